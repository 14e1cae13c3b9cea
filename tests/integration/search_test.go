// Package integration exercises the full client + scroll stack against an
// in-process mock Searchbase service.
package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/searchbase-dev/searchbase-go/internal/testutil"
	"github.com/searchbase-dev/searchbase-go/pkg/client"
	"github.com/searchbase-dev/searchbase-go/pkg/pagination"
	"github.com/searchbase-dev/searchbase-go/pkg/query"
)

// setupClient starts a mock service with n records and a client pointed at it.
func setupClient(t *testing.T, n int) (*client.Client, *testutil.MockSearchbase) {
	t.Helper()

	mock := testutil.NewMockSearchbase(testutil.Records(n)...)
	t.Cleanup(mock.Close)

	c, err := client.New(client.Config{
		BaseURL: mock.URL(),
		Token:   "integration-token",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return c, mock
}

func TestSearch_SinglePage(t *testing.T) {
	c, mock := setupClient(t, 5)

	q := &query.Query{
		Index:   "products",
		Filters: []query.Filter{{Field: "category", Op: "eq", Value: "tools"}},
		Sort:    []query.Sort{{Field: "price", Direction: query.Ascending}},
		Select:  []string{"id"},
		Limit:   3,
	}

	resp, err := c.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if resp.Total != 5 {
		t.Errorf("Total = %d, want 5", resp.Total)
	}
	if len(resp.Records) != 3 {
		t.Errorf("Records = %d, want 3", len(resp.Records))
	}
	if resp.Range.Start != 0 || resp.Range.End != 3 {
		t.Errorf("Range = %+v, want {0 3}", resp.Range)
	}

	// The wire request carried the token and the canonical query shape.
	if mock.LastToken() != "integration-token" {
		t.Errorf("Token = %q, want %q", mock.LastToken(), "integration-token")
	}
	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("Requests = %d, want 1", len(reqs))
	}
	raw := reqs[0].Query.Raw
	if _, ok := raw["offset"]; ok {
		t.Error("Zero offset should be omitted from the wire request")
	}
	for _, field := range []string{"index", "filters", "sort", "select", "limit"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("Wire request missing %q", field)
		}
	}
}

func TestScroll_FullTraversal(t *testing.T) {
	c, mock := setupClient(t, 7)

	scroll, err := pagination.NewScroll(c, &query.Query{Index: "products"}, pagination.Config{PageSize: 3})
	if err != nil {
		t.Fatalf("Failed to create scroll: %v", err)
	}

	var all []json.RawMessage
	for scroll.Next(context.Background()) {
		all = append(all, scroll.Batch()...)
	}
	if err := scroll.Err(); err != nil {
		t.Fatalf("Traversal failed: %v", err)
	}

	if len(all) != 7 {
		t.Errorf("Records = %d, want 7", len(all))
	}

	// 7 records at page size 3: pages of 3, 3, 1.
	reqs := mock.Requests()
	if len(reqs) != 3 {
		t.Fatalf("Requests = %d, want 3", len(reqs))
	}

	// Each request's offset equals the previous response's range end: the
	// first page omits offset entirely, then 3, then 6.
	if _, ok := reqs[0].Query.Raw["offset"]; ok {
		t.Error("First page should omit offset")
	}
	if reqs[1].Query.Offset != 3 {
		t.Errorf("Second page offset = %d, want 3", reqs[1].Query.Offset)
	}
	if reqs[2].Query.Offset != 6 {
		t.Errorf("Third page offset = %d, want 6", reqs[2].Query.Offset)
	}

	// Records arrive in order, exactly once.
	for i, record := range all {
		var decoded struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(record, &decoded); err != nil {
			t.Fatalf("Record %d undecodable: %v", i, err)
		}
		if decoded.ID != i+1 {
			t.Errorf("Record %d id = %d, want %d", i, decoded.ID, i+1)
		}
	}
}

func TestScroll_EmptyIndex(t *testing.T) {
	c, mock := setupClient(t, 0)

	scroll, err := pagination.NewScroll(c, &query.Query{Index: "products"}, pagination.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create scroll: %v", err)
	}

	if scroll.Next(context.Background()) {
		t.Error("Expected zero batches for an empty index")
	}
	if err := scroll.Err(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("Requests = %d, want 1", mock.RequestCount())
	}
}

func TestScroll_PageFailureMidTraversal(t *testing.T) {
	c, mock := setupClient(t, 5)
	mock.FailCall(2, 500, `{"message": "index not found"}`)

	scroll, err := pagination.NewScroll(c, &query.Query{Index: "products"}, pagination.Config{PageSize: 2})
	if err != nil {
		t.Fatalf("Failed to create scroll: %v", err)
	}

	ctx := context.Background()

	if !scroll.Next(ctx) {
		t.Fatal("Expected the first page to succeed")
	}
	first := scroll.Batch()
	if len(first) != 2 {
		t.Fatalf("First batch = %d records, want 2", len(first))
	}

	if scroll.Next(ctx) {
		t.Fatal("Expected the second page to fail")
	}

	var searchErr *client.SearchError
	if !errors.As(scroll.Err(), &searchErr) {
		t.Fatalf("Err = %v, want *client.SearchError", scroll.Err())
	}
	if searchErr.Error() != "index not found" {
		t.Errorf("Error = %q, want %q", searchErr.Error(), "index not found")
	}
	if searchErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", searchErr.StatusCode)
	}

	// The batch yielded before the failure is still usable.
	if string(first[0]) != `{"id": 1}` {
		t.Errorf("First record = %s, want {\"id\": 1}", first[0])
	}
}

func TestSearchAll_Iterator(t *testing.T) {
	c, _ := setupClient(t, 12)

	var all []json.RawMessage
	for batch, err := range pagination.SearchAll(context.Background(), c, &query.Query{Index: "products"}) {
		if err != nil {
			t.Fatalf("Unexpected iteration error: %v", err)
		}
		all = append(all, batch...)
	}

	if len(all) != 12 {
		t.Errorf("Records = %d, want 12", len(all))
	}
}

func TestScroll_ResultSetShrinksMidTraversal(t *testing.T) {
	c, mock := setupClient(t, 10)

	scroll, err := pagination.NewScroll(c, &query.Query{Index: "products"}, pagination.Config{PageSize: 4})
	if err != nil {
		t.Fatalf("Failed to create scroll: %v", err)
	}

	ctx := context.Background()

	if !scroll.Next(ctx) {
		t.Fatal("Expected the first page to succeed")
	}
	if scroll.Total() != 10 {
		t.Errorf("Total after first page = %d, want 10", scroll.Total())
	}

	// Half the dataset disappears between pages; the scroll picks up the new
	// total on the next fetch and stops early.
	mock.SetRecords(testutil.Records(6))

	batches := 1
	for scroll.Next(ctx) {
		batches++
	}
	if err := scroll.Err(); err != nil {
		t.Fatalf("Traversal failed: %v", err)
	}

	if batches != 2 {
		t.Errorf("Batches = %d, want 2", batches)
	}
	if scroll.Total() != 6 {
		t.Errorf("Final total = %d, want 6", scroll.Total())
	}
	if scroll.Fetched() != 6 {
		t.Errorf("Fetched = %d, want 6", scroll.Fetched())
	}
}
