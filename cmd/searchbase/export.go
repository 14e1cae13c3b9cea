package main

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/searchbase-dev/searchbase-go/pkg/metrics"
	"github.com/searchbase-dev/searchbase-go/pkg/pagination"
)

// newExportCmd creates the export command: a full traversal of the index
// streamed to stdout as NDJSON, one record per line.
func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}
	var pageSize int
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "export <index>",
		Short: "Export an entire result set as NDJSON",
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

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				go func() {
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						log.Error().Err(err).Str("addr", metricsAddr).Msg("Metrics server failed")
					}
				}()
			}

			scroll, err := pagination.NewScroll(c, q, pagination.Config{PageSize: pageSize})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for scroll.Next(cmd.Context()) {
				for _, record := range scroll.Batch() {
					if _, err := fmt.Fprintf(out, "%s\n", record); err != nil {
						return err
					}
				}
			}

			return scroll.Err()
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.filters, "filter", nil, "filter as field:op:value (repeatable)")
	flags.StringArrayVar(&opts.sorts, "sort", nil, "sort as field:asc or field:desc (repeatable)")
	flags.StringSliceVar(&opts.selects, "select", nil, "fields to return")
	flags.IntVar(&pageSize, "page-size", pagination.DefaultPageSize, "records requested per page")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address while exporting")

	return cmd
}
