// Package fetch downloads pages and resources from the mirrored site and
// writes them into the mirror.
//
// Every request is a plain GET resolved against the site root. Pages are
// returned as UTF-8 text for link extraction; resources are returned as raw
// bytes. A failed fetch writes nothing and returns an error describing that
// single suffix, so callers can skip it and carry on.
//
// # Text decoding
//
// Page bodies are decoded by sniffing the body itself (byte order mark,
// then <meta charset> in the first kilobyte) with golang.org/x/net/html/charset
// whenever the body is not already valid UTF-8.
// The Content-Type header is never consulted. Bytes that are invalid in the
// detected encoding become U+FFFD.
package fetch
