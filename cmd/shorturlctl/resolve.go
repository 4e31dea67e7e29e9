package main

import (
	"fmt"

	"shorturl/internal/domain"

	"github.com/spf13/cobra"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Print the long URL behind a short id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			longURL, err := a.Service.Resolve(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resolve %q: %w", args[0], err)
			}

			if asJSON {
				return printMapping(cmd.OutOrStdout(), domain.NewMapping(args[0], longURL))
			}
			fmt.Fprintln(cmd.OutOrStdout(), longURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, `print the mapping as {"id": ..., "url": ...}`)
	return cmd
}
