package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/checks/all"
	"github.com/ormasoftchile/mapcheck/pkg/config"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
	"github.com/ormasoftchile/mapcheck/pkg/report"
	"github.com/ormasoftchile/mapcheck/pkg/trace"
)

var (
	checkRoot        string
	checkConfig      string
	checkFormat      string
	checkWhere       string
	checkMinSeverity string
	checkDifficulty  string
	checkTrace       string
	checkJobs        int
	checkWidth       int
	checkOnly        []string
	checkDisable     []string
)

// errIssuesFound makes the process exit non-zero without repeating the report.
var errIssuesFound = errors.New("issues at or above problem severity found")

var checkCmd = &cobra.Command{
	Use:   "check [beatmapset.yaml...]",
	Short: "Run the check suite against parsed beatmapset documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	addRunFlags(checkCmd)
	f := checkCmd.Flags()
	f.StringVar(&checkFormat, "format", "text", "Output format: text, json, yaml or msgpack")
	f.StringVar(&checkTrace, "trace", "", "Write a hash-chained JSONL trace of the run")
	f.IntVar(&checkWidth, "width", 0, "Truncate text messages to this many columns (0: no limit)")
}

// addRunFlags binds the flags shared by every command that runs checks.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&checkRoot, "root", "", "Beatmapset folder media is probed in (default: each document's directory)")
	f.StringVar(&checkConfig, "config", "", "Configuration file (default: discovered from the first document's directory)")
	f.StringVar(&checkWhere, "where", "", `Only report issues matching an expression, e.g. 'severity >= Problem && beatmap == "Hard"'`)
	f.StringVar(&checkMinSeverity, "min-severity", "", "Lowest severity to report: minor, warning, problem, unrankable or error")
	f.StringVar(&checkDifficulty, "difficulty", "", "Evaluate every issue against this tier: easy, normal, hard, insane or expert")
	f.StringSliceVar(&checkOnly, "only", nil, "Run only these check IDs or prefixes ending in '/'")
	f.StringSliceVar(&checkDisable, "disable", nil, "Skip these check IDs or prefixes ending in '/'")
	f.IntVar(&checkJobs, "jobs", 0, "Beatmapsets checked in parallel (default: one per CPU)")
}

// run is a completed, unfiltered check run over one or more sets.
type run struct {
	cfg  *config.Config
	sel  report.Selection
	jobs []check.Job
	bags []*issue.Bag
	reg  *check.Registry
}

// checkArgs validates every document named in args and checks them.
func checkArgs(cmd *cobra.Command, args []string) (*run, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), logLevel)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd, filepath.Dir(args[0]))
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}
	sel, err := selection(cfg)
	if err != nil {
		return nil, err
	}

	jobs := make([]check.Job, len(args))
	for i, path := range args {
		s, errs := beatmap.ValidateFile(path)
		printValidation(cmd.ErrOrStderr(), path, errs)
		if beatmap.HasErrors(errs) {
			return nil, fmt.Errorf("%s: validation failed", path)
		}
		jobs[i] = check.Job{Source: path, Set: s}
	}

	var tw *trace.Writer
	if checkTrace != "" {
		tw, err = trace.NewFileWriter(checkTrace, "check-1")
		if err != nil {
			return nil, fmt.Errorf("trace: %w", err)
		}
		defer tw.Close()
	}

	bags, reg, err := runJobs(cmd, cfg, jobs, tw, logger)
	if err != nil {
		return nil, err
	}
	for _, bag := range bags {
		bag.Sort()
	}
	return &run{cfg: cfg, sel: sel, jobs: jobs, bags: bags, reg: reg}, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	r, err := checkArgs(cmd, args)
	if err != nil {
		return err
	}
	cfg, sel, jobs, bags, reg := r.cfg, r.sel, r.jobs, r.bags, r.reg

	failed := false
	docs := make([]report.Document, len(jobs))
	for i, job := range jobs {
		if err := sel.Apply(bags[i], reg, job.Set); err != nil {
			return err
		}
		docs[i] = report.NewDocument(job.Source, bags[i].Items(), reg)
		failed = failed || docs[i].Failed
	}

	out := cmd.OutOrStdout()
	switch format := cfg.OutputFormat(); format {
	case "text":
		for i, job := range jobs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := report.WriteText(out, job.Source, job.Set, bags[i].Items(), report.TextOptions{Width: checkWidth}); err != nil {
				return err
			}
		}
	default:
		var v any = docs
		if len(docs) == 1 {
			v = docs[0]
		}
		if err := report.Encode(out, format, v); err != nil {
			return err
		}
	}

	if failed {
		return errIssuesFound
	}
	return nil
}

// runJobs checks every set. Sets sharing a media folder share one
// dispatcher and run in parallel; bags come back in input order.
func runJobs(cmd *cobra.Command, cfg *config.Config, jobs []check.Job, tw *trace.Writer, logger *slog.Logger) ([]*issue.Bag, *check.Registry, error) {
	var order []string
	groups := map[string][]int{}
	for i, job := range jobs {
		root := checkRoot
		if root == "" {
			root = filepath.Dir(job.Source)
		}
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], i)
	}

	opts := []check.Option{check.WithLogger(logger)}
	if tw != nil {
		opts = append(opts, check.WithTrace(tw))
	}

	bags := make([]*issue.Bag, len(jobs))
	var reg *check.Registry
	for _, root := range order {
		reg = all.Registry(probe.NewFolder(root)).Select(cfg.Only, cfg.Disabled)
		if reg.Len() == 0 {
			return nil, nil, errors.New("no checks selected")
		}
		group := make([]check.Job, len(groups[root]))
		for j, i := range groups[root] {
			group[j] = jobs[i]
		}
		logger.Debug("checking", "root", root, "sets", len(group), "checks", reg.Len())
		results, err := check.NewDispatcher(reg, opts...).RunSets(cmd.Context(), group, cfg.Jobs)
		if err != nil {
			return nil, nil, err
		}
		for j, i := range groups[root] {
			bags[i] = results[j]
		}
	}
	return bags, reg, nil
}

// loadConfig reads --config or the discovered project file, then lets
// explicitly set flags override it.
func loadConfig(cmd *cobra.Command, dir string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if checkConfig != "" {
		cfg, err = config.LoadFile(checkConfig)
	} else {
		cfg, err = config.Discover(dir)
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Format = checkFormat
	}
	if f.Changed("where") {
		cfg.Where = checkWhere
	}
	if f.Changed("min-severity") {
		sev, err := issue.ParseSeverity(checkMinSeverity)
		if err != nil {
			return nil, fmt.Errorf("--min-severity: %w", err)
		}
		cfg.MinSeverity = &sev
	}
	if f.Changed("difficulty") {
		d, err := beatmap.ParseDifficulty(checkDifficulty)
		if err != nil {
			return nil, fmt.Errorf("--difficulty: %w", err)
		}
		cfg.Difficulty = &d
	}
	if f.Changed("jobs") {
		cfg.Jobs = checkJobs
	}
	if f.Changed("only") {
		cfg.Only = checkOnly
	}
	if f.Changed("disable") {
		cfg.Disabled = append(cfg.Disabled, checkDisable...)
	}
	return cfg, cfg.Validate()
}

func selection(cfg *config.Config) (report.Selection, error) {
	where, err := report.NewFilter(cfg.Where)
	if err != nil {
		return report.Selection{}, err
	}
	return report.Selection{MinSeverity: cfg.MinSeverity, Difficulty: cfg.Difficulty, Where: where}, nil
}

func printValidation(w io.Writer, path string, errs []*beatmap.ValidationError) {
	for _, e := range errs {
		icon := "✗"
		if e.Severity == "warning" {
			icon = "⚠"
		}
		fmt.Fprintf(w, "  %s %s: [%s] %s\n", icon, path, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(w, "    at: %s\n", e.Path)
		}
	}
}
