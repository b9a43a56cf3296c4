package main

import (
	"github.com/spf13/cobra"

	"github.com/tef/cut/json"
)

func newJsonCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "json [file]",
		Short: "Parse a JSON document and print the decoded value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			v, err := json.Parse(string(data))
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), opts.cfg.Format, v)
		},
	}

	return cmd
}
