package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tef/cut/infix"
)

type calcResult struct {
	Input string  `json:"input" yaml:"input"`
	Tree  string  `json:"tree" yaml:"tree"`
	Value float64 `json:"value" yaml:"value"`
}

func newCalcCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc <statement>...",
		Short: "Evaluate arithmetic statements, sharing variables between them",
		Long: `Evaluate each argument as a statement such as "x = 2 * (y + 1)".
Assignments are visible to the statements that follow.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := infix.Env{}
			results := make([]calcResult, 0, len(args))
			for _, src := range args {
				x, err := infix.Parse(src)
				if err != nil {
					return err
				}
				v, err := x.Eval(env)
				if err != nil {
					return fmt.Errorf("eval %s: %w", x, err)
				}
				results = append(results, calcResult{Input: src, Tree: x.String(), Value: v})
			}
			return encode(cmd.OutOrStdout(), opts.cfg.Format, results)
		},
	}

	return cmd
}
