package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/icdts/itemboard/internal/client"
	"github.com/icdts/itemboard/internal/listing"
	"github.com/icdts/itemboard/internal/tui"

	"github.com/spf13/cobra"
)

func main() {
	var (
		server   string
		pageSize int
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:          "browse",
		Short:        "Browse, search and edit items of a running server from the terminal",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := client.New(server, client.WithHTTPClient(&http.Client{Timeout: timeout}))
			return tui.Run(c, pageSize)
		},
	}

	defaultServer := "http://localhost:3000"
	if env := os.Getenv("ITEMBOARD_URL"); env != "" {
		defaultServer = env
	}
	cmd.Flags().StringVarP(&server, "server", "s", defaultServer, "base URL of the item server")
	cmd.Flags().IntVar(&pageSize, "page-size", listing.DefaultPageSize, "items per page")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
