package model

import (
	"sort"
	"time"
)

// ItemKind tells a page apart from an image resource.
type ItemKind string

const (
	// KindPage is an HTML page fetched as text during the page phase.
	KindPage ItemKind = "page"

	// KindResource is an image fetched as raw bytes during the resource phase.
	KindResource ItemKind = "resource"
)

// Failure records one suffix that could not be mirrored.
type Failure struct {
	// Suffix is the site-relative path that failed.
	Suffix string `json:"suffix"`

	// Kind is the phase the failure happened in.
	Kind ItemKind `json:"kind"`

	// Round is the page round the failure happened in; 0 for resources.
	Round int `json:"round,omitempty"`

	// Message is the error text.
	Message string `json:"message"`
}

// RipReport is the summary of one mirroring run.
type RipReport struct {
	// Root is the site root URL as given on the command line.
	Root string `json:"root"`

	// StartPage is the suffix the crawl was seeded with.
	StartPage string `json:"start_page"`

	// OutputDir is the mirror directory.
	OutputDir string `json:"output_dir"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// Rounds is the number of page rounds that dispatched work.
	Rounds int `json:"rounds"`

	// Visited lists every page suffix whose fetch was attempted.
	Visited []string `json:"visited"`

	// Resources lists every image suffix queued for the resource phase.
	Resources []string `json:"resources"`

	// PagesSaved is the number of pages written to the mirror.
	PagesSaved int `json:"pages_saved"`

	// ResourcesSaved is the number of resources written to the mirror.
	ResourcesSaved int `json:"resources_saved"`

	// BytesSaved is the total size of everything written.
	BytesSaved int64 `json:"bytes_saved"`

	// Failures lists the suffixes that were skipped.
	Failures []Failure `json:"failures,omitempty"`

	// Cancelled is true when the run stopped early on a signal or deadline.
	Cancelled bool `json:"cancelled,omitempty"`
}

// NewRipReport creates a report for a run starting now.
func NewRipReport(root, startPage, outputDir string) *RipReport {
	return &RipReport{
		Root:      root,
		StartPage: startPage,
		OutputDir: outputDir,
		StartedAt: time.Now(),
		Visited:   make([]string, 0),
		Resources: make([]string, 0),
		Failures:  make([]Failure, 0),
	}
}

// FailureCount returns the number of skipped suffixes.
func (r *RipReport) FailureCount() int {
	return len(r.Failures)
}

// FailuresOf returns the failures of one kind, sorted by suffix.
func (r *RipReport) FailuresOf(kind ItemKind) []Failure {
	result := make([]Failure, 0)
	for _, f := range r.Failures {
		if f.Kind == kind {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Suffix < result[j].Suffix
	})
	return result
}

// Complete reports whether every visited page and queued resource was saved.
func (r *RipReport) Complete() bool {
	return !r.Cancelled && len(r.Failures) == 0
}

// Status returns a one-word description of how the run ended.
func (r *RipReport) Status() string {
	switch {
	case r.Cancelled:
		return "cancelled"
	case len(r.Failures) > 0:
		return "partial"
	default:
		return "complete"
	}
}

// RipSummary is the stored outline of a past rip, without the suffix lists.
type RipSummary struct {
	ID             int64         `json:"id"`
	Root           string        `json:"root"`
	StartPage      string        `json:"start_page"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Rounds         int           `json:"rounds"`
	PagesSaved     int           `json:"pages_saved"`
	ResourcesSaved int           `json:"resources_saved"`
	BytesSaved     int64         `json:"bytes_saved"`
	FailureCount   int           `json:"failure_count"`
	Status         string        `json:"status"`
}
