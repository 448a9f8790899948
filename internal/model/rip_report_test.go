package model

import "testing"

// TestNewRipReport tests the initial state of a report.
func TestNewRipReport(t *testing.T) {
	t.Parallel()

	r := NewRipReport("https://wiki.example.test", "/wiki/Main_Page", "ripped")

	if r.Root != "https://wiki.example.test" || r.StartPage != "/wiki/Main_Page" || r.OutputDir != "ripped" {
		t.Errorf("unexpected identity fields: %+v", r)
	}
	if r.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if r.Visited == nil || r.Resources == nil || r.Failures == nil {
		t.Error("expected non-nil slices so JSON renders [] instead of null")
	}
	if !r.Complete() {
		t.Error("expected a fresh report to be complete")
	}
}

// TestRipReportStatus tests Status and Complete.
func TestRipReportStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		failures     []Failure
		cancelled    bool
		wantStatus   string
		wantComplete bool
	}{
		{"no failures", nil, false, "complete", true},
		{"with failures", []Failure{{Suffix: "/wiki/A", Kind: KindPage}}, false, "partial", false},
		{"cancelled", nil, true, "cancelled", false},
		{"cancelled wins over failures", []Failure{{Suffix: "/wiki/A", Kind: KindPage}}, true, "cancelled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRipReport("https://wiki.example.test", "/", "ripped")
			r.Failures = tt.failures
			r.Cancelled = tt.cancelled

			if got := r.Status(); got != tt.wantStatus {
				t.Errorf("Status() = %q, want %q", got, tt.wantStatus)
			}
			if got := r.Complete(); got != tt.wantComplete {
				t.Errorf("Complete() = %v, want %v", got, tt.wantComplete)
			}
			if got := r.FailureCount(); got != len(tt.failures) {
				t.Errorf("FailureCount() = %d, want %d", got, len(tt.failures))
			}
		})
	}
}

// TestRipReportFailuresOf tests filtering and ordering by kind.
func TestRipReportFailuresOf(t *testing.T) {
	t.Parallel()

	r := NewRipReport("https://wiki.example.test", "/", "ripped")
	r.Failures = []Failure{
		{Suffix: "/wiki/Z", Kind: KindPage, Round: 1},
		{Suffix: "/images/b.png", Kind: KindResource},
		{Suffix: "/wiki/B", Kind: KindPage, Round: 3},
		{Suffix: "/images/a.png", Kind: KindResource},
	}

	pages := r.FailuresOf(KindPage)
	if len(pages) != 2 || pages[0].Suffix != "/wiki/B" || pages[1].Suffix != "/wiki/Z" {
		t.Errorf("unexpected page failures: %+v", pages)
	}

	resources := r.FailuresOf(KindResource)
	if len(resources) != 2 || resources[0].Suffix != "/images/a.png" {
		t.Errorf("unexpected resource failures: %+v", resources)
	}

	if got := NewRipReport("", "", "").FailuresOf(KindPage); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
