// Package scraper provides HTTP fetching and HTML parsing of election-results pages.
//
// The scraper downloads a single results snapshot, decodes it to UTF-8 based on the
// response's Content-Type or the page's meta charset, and hands back a goquery
// document for extraction. Local snapshots can be loaded with LoadFile. Transient
// failures (5xx, 429, transport errors) are retried only when retries are configured;
// by default a failed fetch aborts the run.
package scraper
