package main

import (
	"fmt"

	"shorturl/internal/domain"

	"github.com/spf13/cobra"
)

func newShortenCmd(opts *rootOptions) *cobra.Command {
	var (
		idOnly bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "shorten <url>...",
		Short: "Shorten one or more URLs and print their short URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			for _, longURL := range args {
				id, err := a.Service.Shorten(cmd.Context(), longURL)
				if err != nil {
					return fmt.Errorf("shorten %q: %w", longURL, err)
				}

				switch {
				case asJSON:
					if err := printMapping(out, domain.NewMapping(id, longURL)); err != nil {
						return err
					}
				case idOnly:
					fmt.Fprintln(out, id)
				default:
					fmt.Fprintf(out, "%s/%s\n", cfg.App.BaseURL, id)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&idOnly, "id-only", false, "print the bare short id instead of the full short URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, `print each mapping as {"id": ..., "url": ...}`)
	return cmd
}
