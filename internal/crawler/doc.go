// Package crawler drives a full site mirror.
//
// # Architecture
//
// The Spider type coordinates the run. It owns a frontier.Frontier for the
// duration of one Rip call and works in two phases:
//
//  1. Pages. Take a snapshot of the pending pages, mark them visited, and
//     fetch each one concurrently. Every fetched page is scanned with the
//     extract package; new links go back to pending, images go to the
//     resource set. All tasks of a round finish before the next snapshot
//     is taken. The phase ends when a snapshot is empty.
//  2. Resources. Take one snapshot of the resource set and fetch each
//     image concurrently. Nothing is discovered from resources.
//
// A site with N reachable pages needs at most N rounds.
//
// # Concurrency
//
// Tasks are run with golang.org/x/sync/errgroup and a concurrency limit.
// Tasks never return an error to the group: a failed page is logged,
// recorded in the report, and contributes nothing else to the frontier.
// No lock is held while a task performs network or file I/O.
//
// # Usage
//
//	f, _ := fetch.New(root, mirror)
//	spider := crawler.NewSpider(f, crawler.WithConcurrency(8))
//	report := model.NewRipReport(rootURL, "/wiki/Main_Page", mirror.Root())
//	err := spider.Rip(ctx, report)
package crawler
