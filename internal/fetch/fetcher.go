package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/nao1215/wikirip/internal/mirror"
)

// Defaults used when no option overrides them.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 50 * 1024 * 1024 // 50MB
)

// sniffLen is how much of a page body charset detection looks at.
const sniffLen = 1024

// Fetcher retrieves suffixes relative to a site root and persists them.
type Fetcher struct {
	// client performs the GET requests.
	client *http.Client

	// root is the absolute site URL every suffix is resolved against.
	root *url.URL

	// mirror receives the fetched content.
	mirror *mirror.Mirror

	// maxBodySize limits how many bytes of a response are read.
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client. The client's own Timeout is kept.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets the per-request timeout on the Fetcher's client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{
				Transport:     f.client.Transport,
				CheckRedirect: f.client.CheckRedirect,
				Jar:           f.client.Jar,
				Timeout:       d,
			}
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// ParseRoot parses and validates the site root URL.
// The root must carry both a scheme and a host.
func ParseRoot(rawRoot string) (*url.URL, error) {
	root, err := url.Parse(rawRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoot, rawRoot)
	}
	return root, nil
}

// New creates a Fetcher for root that writes into m.
func New(root *url.URL, m *mirror.Mirror, opts ...Option) (*Fetcher, error) {
	if root == nil || root.Scheme == "" || root.Host == "" {
		return nil, ErrInvalidRoot
	}

	f := &Fetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		root:        root,
		mirror:      m,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Resolve returns the absolute URL for suffix. The suffix's path and query
// replace the root's; scheme, user info and host always come from the root.
// A suffix carrying its own scheme or host yields ErrForeignSuffix.
func (f *Fetcher) Resolve(suffix string) (*url.URL, error) {
	ref, err := url.Parse(suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to parse suffix %q: %w", suffix, err)
	}
	if ref.Scheme != "" || ref.Host != "" || ref.User != nil || ref.Opaque != "" {
		return nil, fmt.Errorf("%w: %s", ErrForeignSuffix, suffix)
	}

	target := *f.root
	target.Path = ref.Path
	target.RawPath = ref.RawPath
	target.RawQuery = ref.RawQuery
	target.ForceQuery = false
	target.Fragment = ""
	target.RawFragment = ""
	if !strings.HasPrefix(target.Path, "/") {
		target.Path = "/" + target.Path
		target.RawPath = ""
	}
	return &target, nil
}

// FetchPage downloads suffix, stores the decoded text in the mirror and
// returns it for link extraction.
func (f *Fetcher) FetchPage(ctx context.Context, suffix string) (string, error) {
	body, err := f.get(ctx, suffix)
	if err != nil {
		return "", err
	}

	text, err := decodeText(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", suffix, err)
	}

	if err := f.mirror.Write(suffix, []byte(text)); err != nil {
		return "", err
	}
	return text, nil
}

// FetchResource downloads suffix and stores the raw bytes in the mirror.
func (f *Fetcher) FetchResource(ctx context.Context, suffix string) ([]byte, error) {
	body, err := f.get(ctx, suffix)
	if err != nil {
		return nil, err
	}

	if err := f.mirror.Write(suffix, body); err != nil {
		return nil, err
	}
	return body, nil
}

// get performs the GET request for suffix and reads the full body.
// Suffixes the mirror cannot store are refused before any request is sent.
func (f *Fetcher) get(ctx context.Context, suffix string) ([]byte, error) {
	target, err := f.Resolve(suffix)
	if err != nil {
		return nil, err
	}
	if err := f.mirror.Validate(suffix); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", suffix, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", suffix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, sniffLen)) //nolint:errcheck // best effort
		return nil, &StatusError{URL: target.Redacted(), StatusCode: resp.StatusCode}
	}

	// Read one byte past the limit to tell "exactly at limit" from "over".
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", suffix, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: %s", ErrBodyTooLarge, suffix)
	}
	return body, nil
}

// decodeText converts a page body to UTF-8 using only the body itself to
// detect its encoding. Valid UTF-8 is returned unchanged.
func decodeText(body []byte) (string, error) {
	if utf8.Valid(body) {
		return string(body), nil
	}

	head := body
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	enc, _, _ := charset.DetermineEncoding(head, "")

	var sb strings.Builder
	r := transform.NewReader(bytes.NewReader(body), enc.NewDecoder())
	if _, err := io.Copy(&sb, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}
