package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the mapping store and its schema if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service.Ready(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s store ready\n", cfg.Storage.Driver)
			return nil
		},
	}
}
