// Package extract pulls same-site page links and image references out of
// raw page text.
//
// No markup parser is involved. The text is searched for the literal
// attribute markers href= and src=, so broken markup can only drop an
// occurrence, never fail the page.
//
// # Scanning rules
//
// For every occurrence of a marker the scanner skips the marker and one
// opening-quote character, then collects characters up to the next double
// quote. An occurrence whose closing quote is missing is discarded.
//
// # Filters
//
//   - Links must start with "/" and contain none of ":", "?", "#".
//   - Resources must start with "/" and end with .jpg, .png, .jpeg, .gif or
//     .svg (case-sensitive).
package extract
