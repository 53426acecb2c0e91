package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reoring/polyjson/config"
)

func newRulesCommand(g *globals) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List each base shape's rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(g, configPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the registry YAML/JSON file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runRules(g *globals, configPath string, out io.Writer) error {
	reg, err := config.LoadFile(filepath.Clean(configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BASE\tORDER\tRULE")
	for _, base := range reg.Bases() {
		rules := reg.Rules(base)
		g.logf("rules: base=%s count=%d", base, len(rules))
		for i, r := range rules {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", base, i, r)
		}
		if fb, ok := reg.Fallback(base); ok {
			fmt.Fprintf(tw, "%s\t-\tfallback -> %s\n", base, fb)
		}
	}
	return tw.Flush()
}
