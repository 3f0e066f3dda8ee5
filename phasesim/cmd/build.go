package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/phasesim/examples/counting"
	"github.com/sarchlab/phasesim/sim/hooking"
	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/routing"
	"github.com/sarchlab/phasesim/sim/simulation"
	"github.com/sarchlab/phasesim/sim/termination"
	"github.com/sarchlab/phasesim/sim/timing"
)

const terminatorName = "Stop"

// run holds the parts of a simulation built from a config.
type run struct {
	sim        *simulation.Simulation
	terminator *termination.TickTerminator
	components []modeling.Component
	probes     []*counting.Probe
	border     *routing.Border

	phaseCounts *hooking.PhaseCountTracer
}

func newSimulation(cfg Config) *simulation.Simulation {
	b := simulation.MakeBuilder().WithTickDelay(cfg.TickDelay)
	if cfg.ID != "" {
		b = b.WithID(cfg.ID)
	}

	return b.Build()
}

func buildComponent(c ComponentConfig) (modeling.Component, error) {
	b := counting.MakeBuilder()

	if c.Step != nil {
		b = b.WithStep(*c.Step)
	}

	if c.Value != nil {
		b = b.WithValue(c.Value)
	}

	if c.ReportBlanks {
		b = b.WithBlankReports()
	}

	return b.BuildKind(c.Kind, c.Name)
}

// populate adds the configured components and a tick terminator to the
// simulation and attaches the border file, if there is one.
func populate(s *simulation.Simulation, cfg Config) (*run, error) {
	r := &run{sim: s}

	for _, cc := range cfg.Components {
		c, err := buildComponent(cc)
		if err != nil {
			return nil, err
		}

		if err := s.AddComponent(c); err != nil {
			return nil, err
		}

		r.components = append(r.components, c)

		if p, ok := c.(*counting.Probe); ok {
			r.probes = append(r.probes, p)
		}
	}

	var opts []termination.TickOption
	if cfg.ExactBound {
		opts = append(opts, termination.WithExactBound())
	}

	r.terminator = termination.NewTickTerminator(
		terminatorName, s.Clock(), timing.VTick(cfg.Ticks), opts...)
	if err := s.AddComponent(r.terminator); err != nil {
		return nil, err
	}

	if cfg.Border == "" {
		return r, nil
	}

	border, err := loadBorderFile(cfg.Border, s)
	if err != nil {
		return nil, err
	}

	border.Attach()
	r.border = border

	return r, nil
}

func loadBorderFile(path string, lookup routing.Lookup) (*routing.Border, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	border, err := routing.LoadBorder(f, lookup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return border, nil
}
