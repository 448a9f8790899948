package extract

import "strings"

// Attribute markers searched for in page text.
const (
	linkMarker     = "href="
	resourceMarker = "src="
)

// imageExtensions are the resource suffixes worth mirroring.
// Matching is case-sensitive: "/a.JPG" is not an image here.
var imageExtensions = []string{".jpg", ".png", ".jpeg", ".gif", ".svg"}

// Result holds the suffixes discovered on one page.
// Both slices keep the order of first appearance and contain no duplicates.
type Result struct {
	// Links are same-site page suffixes (e.g. "/wiki/Go").
	Links []string

	// Resources are image suffixes (e.g. "/images/logo.png").
	Resources []string
}

// Extract scans text for page links and image resources.
// It does not consult any crawl state; filtering against pages already
// visited is the caller's job.
func Extract(text string) Result {
	return Result{
		Links:     Links(text),
		Resources: Resources(text),
	}
}

// Links returns every href= candidate that names a same-site page.
func Links(text string) []string {
	return filterUnique(scanAttribute(text, linkMarker), IsPageLink)
}

// Resources returns every src= candidate that names an image.
func Resources(text string) []string {
	return filterUnique(scanAttribute(text, resourceMarker), IsImageResource)
}

// IsPageLink reports whether candidate is a plain site-relative path with
// no scheme, port, query or fragment.
func IsPageLink(candidate string) bool {
	if !strings.HasPrefix(candidate, "/") {
		return false
	}
	return !strings.ContainsAny(candidate, ":?#")
}

// IsImageResource reports whether candidate is a site-relative path to an
// image file.
func IsImageResource(candidate string) bool {
	if !strings.HasPrefix(candidate, "/") {
		return false
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(candidate, ext) {
			return true
		}
	}
	return false
}

// scanAttribute returns the raw value of every terminated occurrence of
// marker in text. Each value starts one byte after the marker (the opening
// quote is skipped whatever it is) and ends before the next '"'.
func scanAttribute(text, marker string) []string {
	var candidates []string

	offset := 0
	for {
		idx := strings.Index(text[offset:], marker)
		if idx < 0 {
			return candidates
		}
		start := offset + idx + len(marker)
		offset = start

		value, ok := readQuoted(text, start)
		if !ok {
			continue
		}
		candidates = append(candidates, value)
	}
}

// readQuoted reads the value following an attribute marker that ends at
// index start. It reports false when the text ends before the opening quote
// or before a closing '"'.
func readQuoted(text string, start int) (string, bool) {
	// skip the opening quote
	valueStart := start + 1
	if valueStart > len(text) {
		return "", false
	}
	end := strings.IndexByte(text[valueStart:], '"')
	if end < 0 {
		return "", false
	}
	return text[valueStart : valueStart+end], true
}

// filterUnique keeps candidates accepted by keep, dropping repeats.
func filterUnique(candidates []string, keep func(string) bool) []string {
	result := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if !keep(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result
}
