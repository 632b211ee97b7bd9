package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/checks/all"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
	"github.com/ormasoftchile/mapcheck/pkg/report"
	"github.com/ormasoftchile/mapcheck/pkg/scenario"
)

// catalog is the registry used by commands that describe checks without
// running them.
func catalog() *check.Registry {
	return all.Registry(probe.NewStatic(nil))
}

// --- list ---

var listSelect []string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered checks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := catalog()
		if len(listSelect) > 0 {
			reg = reg.Select(listSelect, nil)
		}
		return report.WriteCheckList(cmd.OutOrStdout(), reg.All())
	},
}

// --- explain ---

var (
	explainStyle string
	explainWidth int
	explainRaw   bool
)

var explainCmd = &cobra.Command{
	Use:   "explain [check-id]",
	Short: "Show the documentation and issue templates of a check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ok := catalog().Get(args[0])
		if !ok {
			return fmt.Errorf("unknown check %q, see 'mapcheck list'", args[0])
		}
		md := report.CheckMarkdown(c)
		if explainRaw {
			_, err := fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		}
		out, err := report.RenderMarkdown(md, explainStyle, explainWidth)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export JSON Schema to stdout",
}

func schemaExport(use, short string, gen func() ([]byte, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := gen()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func init() {
	listCmd.Flags().StringSliceVar(&listSelect, "select", nil, "Only list these check IDs or prefixes ending in '/'")

	explainCmd.Flags().StringVar(&explainStyle, "style", "", "Glamour style: dark, light, notty (default: from terminal)")
	explainCmd.Flags().IntVar(&explainWidth, "width", 80, "Word wrap width")
	explainCmd.Flags().BoolVar(&explainRaw, "raw", false, "Print markdown without rendering")

	schemaCmd.AddCommand(schemaExport("beatmapset", "Export the beatmapset document JSON Schema", beatmap.GenerateJSONSchema))
	schemaCmd.AddCommand(schemaExport("scenario", "Export the scenario test spec JSON Schema", scenario.GenerateJSONSchema))
}
