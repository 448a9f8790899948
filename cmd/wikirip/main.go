// Package main provides the entry point for the wikirip CLI.
//
// wikirip mirrors a wiki-style website onto the local filesystem: it follows
// every site-relative link from a starting page, saves each page under a
// path equal to its URL suffix, and then downloads every image it found.
//
// Usage:
//
//	wikirip rip --root https://wiki.example.org --starting-page /wiki/Main_Page
//	wikirip history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
