// Package cli provides the polyjson command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/polyjson/i18n"
)

type globals struct {
	verbose bool
	lang    string
	stderr  io.Writer
}

func (g *globals) logf(format string, a ...any) {
	if g.verbose {
		fmt.Fprintf(g.stderr, format+"\n", a...)
	}
}

// NewRootCommand builds the command tree. Output goes to the command's
// configured writers, which default to os.Stdout and os.Stderr.
func NewRootCommand() *cobra.Command {
	g := &globals{stderr: os.Stderr}
	rootCmd := &cobra.Command{
		Use:           "polyjson",
		Short:         "Decode polymorphic JSON against a shape registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			g.stderr = cmd.ErrOrStderr()
			switch g.lang {
			case "en", "ja":
				i18n.SetLanguage(g.lang)
			default:
				return fmt.Errorf("unsupported language %q", g.lang)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logs")
	rootCmd.PersistentFlags().StringVar(&g.lang, "lang", "en", "message language: en or ja")

	rootCmd.AddCommand(newDecodeCommand(g))
	rootCmd.AddCommand(newRulesCommand(g))
	return rootCmd
}

// Execute creates and runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "polyjson:", err)
		return err
	}
	return nil
}
