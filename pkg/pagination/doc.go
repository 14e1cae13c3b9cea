// Package pagination provides the auto-pagination cursor for Searchbase
// search results.
//
// The service returns results in bounded pages and reports which slice of the
// full result set each page covers. A Scroll turns repeated single-page
// fetches into one lazy, forward-only traversal: each advance performs at
// most one page fetch, the next offset is taken from the server-reported
// range end (never computed client-side), and the server-reported total is
// re-read on every page so a result set that changes mid-traversal is honored
// on the next advance.
//
// Example usage:
//
//	scroll, err := pagination.NewScroll(searchClient, &query.Query{Index: "products"}, pagination.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	for scroll.Next(ctx) {
//		process(scroll.Batch())
//	}
//	if err := scroll.Err(); err != nil {
//		return err
//	}
//
// The same cursor is available as a range-over-func iterator via
// Scroll.Pages, and SearchAll wraps construction and iteration for the
// common case.
package pagination
