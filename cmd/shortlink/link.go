package main

import (
	"fmt"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/spf13/cobra"
)

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <alias>",
		Short: "Print the shareable URL of an alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := links.NewService(links.Deps{}, cfg.API.HTTPBaseURL)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), svc.AliasToLink(args[0]))
			return err
		},
	}
}
