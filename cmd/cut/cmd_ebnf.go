package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tef/cut/ebnf"
)

func newEbnfCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ebnf",
		Short: "EBNF grammar tools",
	}

	cmd.AddCommand(newEbnfCheckCmd(opts))
	cmd.AddCommand(newEbnfParseCmd(opts))

	return cmd
}

func newEbnfCheckCmd(opts *options) *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check <grammar>",
		Short: "Parse and verify an EBNF grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			if err := ebnf.Check(filename, f, startProduction); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newEbnfParseCmd(opts *options) *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "parse [grammar] [file]",
		Short: "Parse input with an EBNF grammar and print the tree",
		Long: `Parse a file, or stdin, with the start production of an EBNF grammar.
The grammar and start production default to the [grammar] section of the
config file.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarPath := opts.cfg.Grammar.Path
			if len(args) > 0 {
				grammarPath = args[0]
			}
			if grammarPath == "" {
				return errors.New("no grammar given")
			}
			start := opts.cfg.Grammar.Start
			if startProduction != "" {
				start = startProduction
			}
			if start == "" {
				return errors.New("no start production given, use --start")
			}

			p, err := ebnf.Load(grammarPath, start)
			if err != nil {
				return err
			}

			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			data, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			n, err := p.Parse(string(data))
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), opts.cfg.Format, n)
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production (default from config)")

	return cmd
}
