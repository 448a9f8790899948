package extract

import (
	"reflect"
	"strings"
	"testing"
)

// TestExtract tests link and resource discovery on realistic markup.
func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("finds links and images on a wiki page", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="/wiki/A">A</a>
			<a href="/wiki/B">B</a>
			<img src="/images/x.jpg">
			<img src="/images/logo.svg">
		</body></html>`

		got := Extract(page)

		wantLinks := []string{"/wiki/A", "/wiki/B"}
		if !reflect.DeepEqual(got.Links, wantLinks) {
			t.Errorf("expected links %v, got %v", wantLinks, got.Links)
		}
		wantResources := []string{"/images/x.jpg", "/images/logo.svg"}
		if !reflect.DeepEqual(got.Resources, wantResources) {
			t.Errorf("expected resources %v, got %v", wantResources, got.Resources)
		}
	})

	t.Run("collapses duplicate candidates", func(t *testing.T) {
		t.Parallel()

		page := `<a href="/wiki/A"></a><a href="/wiki/A"></a><img src="/i.png"><img src="/i.png">`

		got := Extract(page)
		if len(got.Links) != 1 {
			t.Errorf("expected 1 link, got %v", got.Links)
		}
		if len(got.Resources) != 1 {
			t.Errorf("expected 1 resource, got %v", got.Resources)
		}
	})

	t.Run("empty text yields nothing", func(t *testing.T) {
		t.Parallel()

		got := Extract("")
		if len(got.Links) != 0 || len(got.Resources) != 0 {
			t.Errorf("expected empty result, got %+v", got)
		}
	})

	t.Run("script src is not an image", func(t *testing.T) {
		t.Parallel()

		got := Extract(`<script src="/load.js"></script>`)
		if len(got.Resources) != 0 {
			t.Errorf("expected no resources, got %v", got.Resources)
		}
	})
}

// TestScanAttribute tests the bounded attribute scanner.
func TestScanAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		marker string
		want   []string
	}{
		{
			name:   "single terminated value",
			text:   `<a href="/wiki/A">`,
			marker: linkMarker,
			want:   []string{"/wiki/A"},
		},
		{
			name:   "unterminated value is discarded",
			text:   `<a href="/wiki/A`,
			marker: linkMarker,
			want:   nil,
		},
		{
			name:   "marker at end of text",
			text:   `<a href=`,
			marker: linkMarker,
			want:   nil,
		},
		{
			name:   "marker followed by only the opening quote",
			text:   `<a href="`,
			marker: linkMarker,
			want:   nil,
		},
		{
			name:   "terminated value kept before truncated one",
			text:   `<a href="/a"><a href="/b`,
			marker: linkMarker,
			want:   []string{"/a"},
		},
		{
			name:   "empty attribute",
			text:   `<a href="">`,
			marker: linkMarker,
			want:   []string{""},
		},
		{
			name:   "single quote is skipped but does not terminate",
			text:   `<a href='/a'>x</a><b class="c">`,
			marker: linkMarker,
			want:   []string{"/a'>x</a><b class="},
		},
		{
			name:   "src marker",
			text:   `<img src="/x.png"><img src="/y.gif">`,
			marker: resourceMarker,
			want:   []string{"/x.png", "/y.gif"},
		},
		{
			name:   "multibyte text",
			text:   `<a href="/wiki/日本">日本</a>`,
			marker: linkMarker,
			want:   []string{"/wiki/日本"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := scanAttribute(tt.text, tt.marker)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("scanAttribute(%q, %q) = %q, want %q", tt.text, tt.marker, got, tt.want)
			}
		})
	}
}

// TestScanAttributeNeverPanics feeds every prefix of a page to the scanner.
func TestScanAttributeNeverPanics(t *testing.T) {
	t.Parallel()

	page := `<a href="/wiki/A">A</a><img src="/images/x.jpg"><a href="/wiki/B?x=1">`
	for i := 0; i <= len(page); i++ {
		prefix := page[:i]
		for _, marker := range []string{linkMarker, resourceMarker} {
			for _, c := range scanAttribute(prefix, marker) {
				if !strings.Contains(prefix, c+`"`) {
					t.Errorf("candidate %q from prefix %q has no terminating quote", c, prefix)
				}
			}
		}
	}
}

// TestIsPageLink tests the same-site link filter.
func TestIsPageLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		candidate string
		expected  bool
	}{
		{"/wiki/Main_Page", true},
		{"/", true},
		{"/wiki/Go_(programming_language)", true},
		{"wiki/A", false},
		{"", false},
		{"https://example.test/wiki/A", false},
		{"//cdn.example.test/a", true},
		{"/wiki/Special:Random", false},
		{"/w/index.php?title=A", false},
		{"/wiki/A#History", false},
		{"#top", false},
		{"mailto:someone@example.test", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			t.Parallel()

			if got := IsPageLink(tt.candidate); got != tt.expected {
				t.Errorf("IsPageLink(%q) = %v, want %v", tt.candidate, got, tt.expected)
			}
		})
	}
}

// TestIsImageResource tests the image resource filter.
func TestIsImageResource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		candidate string
		expected  bool
	}{
		{"/images/x.jpg", true},
		{"/images/x.png", true},
		{"/images/x.jpeg", true},
		{"/images/x.gif", true},
		{"/images/x.svg", true},
		{"/images/x.JPG", false},
		{"/images/x.webp", false},
		{"/images/x.jpg?width=10", false},
		{"images/x.jpg", false},
		{"https://example.test/x.png", false},
		{"/static/app.js", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			t.Parallel()

			if got := IsImageResource(tt.candidate); got != tt.expected {
				t.Errorf("IsImageResource(%q) = %v, want %v", tt.candidate, got, tt.expected)
			}
		})
	}
}
