package main

import (
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/mapcheck/pkg/browse"
	"github.com/ormasoftchile/mapcheck/pkg/shell"
)

var interactiveStyle string

var browseCmd = &cobra.Command{
	Use:   "browse <beatmapset.yaml>",
	Short: "Browse the issues of a beatmapset in a full-screen terminal UI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := checkArgs(cmd, args)
		if err != nil {
			return err
		}
		job := r.jobs[0]
		if err := r.sel.Apply(r.bags[0], r.reg, job.Set); err != nil {
			return err
		}
		return browse.Run(browse.Config{
			Source:   job.Source,
			Set:      job.Set,
			Registry: r.reg,
			Issues:   r.bags[0].Items(),
			Style:    interactiveStyle,
		})
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell <beatmapset.yaml>",
	Short: "Explore the issues of a beatmapset in an interactive shell",
	Long: `Checks the beatmapset once, then reads commands that refine which
issues are shown. The --where, --min-severity and --difficulty flags set
the starting filter; "reset" restores it. Type "help" for the commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := checkArgs(cmd, args)
		if err != nil {
			return err
		}
		job := r.jobs[0]
		sh := shell.New(job.Source, job.Set, r.reg, r.bags[0].Items(), r.sel)
		sh.Style = interactiveStyle
		return sh.Run(cmd.Context())
	},
}

func init() {
	for _, c := range []*cobra.Command{browseCmd, shellCmd} {
		addRunFlags(c)
		c.Flags().StringVar(&interactiveStyle, "style", "", "Glamour style for check documentation: dark, light, notty (default: from terminal)")
	}
}
