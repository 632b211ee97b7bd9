// Package all registers every built-in check.
package all

import (
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/checks/compose"
	"github.com/ormasoftchile/mapcheck/pkg/checks/events"
	"github.com/ormasoftchile/mapcheck/pkg/checks/metadata"
	"github.com/ormasoftchile/mapcheck/pkg/checks/resources"
	"github.com/ormasoftchile/mapcheck/pkg/checks/spread"
	"github.com/ormasoftchile/mapcheck/pkg/checks/timing"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
)

// Checks returns every built-in check. Checks that inspect files on disk
// use p.
func Checks(p probe.Prober) []*check.Check {
	return []*check.Check{
		metadata.Inconsistent(),
		metadata.MarkerFormat(),
		metadata.VersionFormat(),
		timing.InconsistentLines(),
		timing.UnusedLines(),
		spread.CloseOverlap(),
		spread.SpinnerRecovery(),
		compose.ZeroNode(),
		events.StoryHitSounds(),
		resources.AudioInVideo(p),
		resources.VideoResolution(p),
		resources.ZeroBytes(p),
	}
}

// Register adds every built-in check to reg.
func Register(reg *check.Registry, p probe.Prober) error {
	return reg.Register(Checks(p)...)
}

// Registry returns a new registry holding every built-in check.
func Registry(p probe.Prober) *check.Registry {
	reg := check.NewRegistry()
	reg.MustRegister(Checks(p)...)
	return reg
}
