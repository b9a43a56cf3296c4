package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/kutil/util"

	"github.com/tef/cut"
	"github.com/tef/cut/internal/config"
)

// options are the global flags, merged over the config file before any
// subcommand runs.
type options struct {
	configPath string
	verbose    int
	logFile    string
	format     string

	cfg *config.Config
}

func (o *options) load(cmd *cobra.Command) error {
	var err error
	if o.configPath != "" {
		o.cfg, err = config.Load(o.configPath)
	} else {
		o.cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		o.cfg.Verbosity = o.verbose
	}
	if flags.Changed("log") {
		o.cfg.LogFile = o.logFile
	}
	if flags.Changed("format") {
		o.cfg.Format = o.format
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}

	commonlog.Configure(o.cfg.Verbosity, o.cfg.LogPath())
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "cut",
		Short:         "Committed-choice parsers for JSON, arithmetic and EBNF grammars",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file, TOML or YAML (default $"+config.EnvVar+")")
	flags.CountVarP(&opts.verbose, "verbose", "v", "log more, repeat for debug output")
	flags.StringVar(&opts.logFile, "log", "", "log to a file instead of stderr")
	flags.StringVar(&opts.format, "format", "", "output format: json or yaml")

	rootCmd.AddCommand(newJsonCmd(opts))
	rootCmd.AddCommand(newCalcCmd(opts))
	rootCmd.AddCommand(newEbnfCmd(opts))

	return rootCmd
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printErrors(os.Stderr, err)
		util.Exit(1)
	}
	util.Exit(0)
}

// printErrors writes a fatal parse failure with its trace, one frame per
// line, and grammar error lists one error per line.
func printErrors(w io.Writer, err error) {
	var fatal *cut.FatalError
	if errors.As(err, &fatal) {
		fmt.Fprintln(w, "error:", err)
		for _, r := range fatal.Trace {
			fmt.Fprintln(w, "  ", r)
		}
		return
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() == reflect.Slice {
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
			return
		}
	}
	fmt.Fprintln(w, "error:", err)
}
