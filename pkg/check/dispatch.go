package check

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/trace"
)

// Dispatcher runs the checks of a registry against beatmapsets. It holds no
// per-run state, so one dispatcher may serve concurrent runs.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	tracer   *trace.Writer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for recovered failures and timings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithTrace records every check invocation and issue to tw.
func WithTrace(tw *trace.Writer) Option {
	return func(d *Dispatcher) { d.tracer = tw }
}

func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Registry returns the registry the dispatcher runs.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Run lazily evaluates every applicable check against s, in check ID
// order. Beatmap checks run once per beatmap of a matching mode and their
// issues are anchored at that beatmap. Set checks run once when any beatmap
// matches; issues they anchor at a beatmap of another mode are dropped.
//
// A panic inside a check body becomes one Error issue and the remaining
// checks still run. A *issue.TemplateError is re-raised.
func (d *Dispatcher) Run(s *beatmap.Set) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for _, c := range d.registry.All() {
			switch c.Scope {
			case ScopeBeatmap:
				for _, b := range s.Beatmaps {
					if !c.Meta.AppliesToMode(b.Mode) {
						continue
					}
					emit := func(i issue.Issue) (issue.Issue, bool) {
						if i.Beatmap == "" {
							i = i.For(b)
						}
						return i, true
					}
					if !d.invoke(c, b.Version(), func() iter.Seq[issue.Issue] { return c.beatmapFn(b) }, emit, yield) {
						return
					}
				}
			case ScopeSet:
				if !s.HasMode(c.Meta.Modes) {
					continue
				}
				emit := func(i issue.Issue) (issue.Issue, bool) {
					if i.Beatmap == "" {
						return i, true
					}
					b, ok := s.Beatmap(i.Beatmap)
					return i, !ok || c.Meta.AppliesToMode(b.Mode)
				}
				if !d.invoke(c, "", func() iter.Seq[issue.Issue] { return c.setFn(s) }, emit, yield) {
					return
				}
			}
		}
	}
}

// Collect drains Run into a bag, tracing the run boundaries.
func (d *Dispatcher) Collect(source string, s *beatmap.Set) *issue.Bag {
	start := time.Now()
	if d.tracer != nil {
		_ = d.tracer.EmitRunStart(source, len(s.Beatmaps), d.registry.Len())
	}
	bag := issue.NewBag(d.Run(s))
	if d.tracer != nil {
		_ = d.tracer.EmitRunComplete(bag.Counts(), time.Since(start))
	}
	d.logger.Debug("run complete", "source", source, "issues", bag.Len(), "duration", time.Since(start))
	return bag
}

// invoke drains one check invocation into yield. It returns false when the
// consumer stopped early.
func (d *Dispatcher) invoke(c *Check, anchor string, eval func() iter.Seq[issue.Issue],
	emit func(issue.Issue) (issue.Issue, bool), yield func(issue.Issue) bool) (cont bool) {
	start := time.Now()
	count := 0
	inConsumer := false
	cont = true

	if d.tracer != nil {
		_ = d.tracer.EmitCheckStart(c.ID, anchor)
	}
	deliver := func(i issue.Issue) bool {
		count++
		if d.tracer != nil {
			_ = d.tracer.EmitIssue(i)
		}
		inConsumer = true
		ok := yield(i)
		inConsumer = false
		return ok
	}

	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if inConsumer {
				panic(r)
			}
			if te, ok := r.(*issue.TemplateError); ok {
				panic(te)
			}
			detail := fmt.Sprint(r)
			d.logger.Error("check failed", "check", c.ID, "beatmap", anchor, "panic", detail)
			if d.tracer != nil {
				_ = d.tracer.EmitCheckPanic(c.ID, anchor, detail)
			}
			cont = deliver(issue.Failure(c.ID, anchor, detail))
		}()
		for i := range eval() {
			i, keep := emit(i)
			if !keep {
				continue
			}
			if !deliver(i) {
				cont = false
				return
			}
		}
	}()

	if d.tracer != nil {
		_ = d.tracer.EmitCheckComplete(c.ID, anchor, count, time.Since(start))
	}
	d.logger.Debug("check complete", "check", c.ID, "beatmap", anchor, "issues", count, "duration", time.Since(start))
	return cont
}
