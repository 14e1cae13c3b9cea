package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/searchbase-dev/searchbase-go/pkg/query"
)

// searchOptions carries the query flags for one search invocation.
type searchOptions struct {
	filters []string
	sorts   []string
	selects []string
	limit   int
	offset  int
}

// newSearchCmd creates the search command: one page of results, printed as
// indented JSON.
func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <index>",
		Short: "Run a single search against an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(args[0], opts)
			if err != nil {
				return err
			}

			c, err := root.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Search(cmd.Context(), q)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.filters, "filter", nil, "filter as field:op:value (repeatable)")
	flags.StringArrayVar(&opts.sorts, "sort", nil, "sort as field:asc or field:desc (repeatable)")
	flags.StringSliceVar(&opts.selects, "select", nil, "fields to return")
	flags.IntVar(&opts.limit, "limit", 0, "maximum records to return")
	flags.IntVar(&opts.offset, "offset", 0, "records to skip")

	return cmd
}

// buildQuery assembles a Query from the index argument and query flags.
func buildQuery(index string, opts *searchOptions) (*query.Query, error) {
	q := &query.Query{
		Index:  index,
		Select: opts.selects,
		Limit:  opts.limit,
		Offset: opts.offset,
	}

	for _, spec := range opts.filters {
		f, err := parseFilter(spec)
		if err != nil {
			return nil, err
		}
		q.Filters = append(q.Filters, f)
	}

	for _, spec := range opts.sorts {
		s, err := parseSort(spec)
		if err != nil {
			return nil, err
		}
		q.Sort = append(q.Sort, s)
	}

	return q, nil
}

// parseFilter parses a field:op:value flag. The value is passed through as an
// opaque string; the service interprets it.
func parseFilter(spec string) (query.Filter, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return query.Filter{}, fmt.Errorf("invalid filter %q, expected field:op:value", spec)
	}

	return query.Filter{Field: parts[0], Op: parts[1], Value: parts[2]}, nil
}

// parseSort parses a field:direction flag. The direction defaults to
// ascending when omitted.
func parseSort(spec string) (query.Sort, error) {
	parts := strings.SplitN(spec, ":", 2)
	if parts[0] == "" {
		return query.Sort{}, fmt.Errorf("invalid sort %q, expected field:asc or field:desc", spec)
	}

	if len(parts) == 1 {
		return query.Sort{Field: parts[0], Direction: query.Ascending}, nil
	}

	switch parts[1] {
	case "asc":
		return query.Sort{Field: parts[0], Direction: query.Ascending}, nil
	case "desc":
		return query.Sort{Field: parts[0], Direction: query.Descending}, nil
	default:
		return query.Sort{}, fmt.Errorf("invalid sort direction %q, expected asc or desc", parts[1])
	}
}
