package simulation

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phasesim/sim/id"
	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/timing"
)

// Builder can be used to build a simulation.
type Builder struct {
	id          string
	idGenerator id.IDGenerator
	phases      []timing.Phase
	tickDelay   time.Duration
	registry    *id.Registry[modeling.Component]
	logger      *logrus.Entry
}

// MakeBuilder creates a new builder with the standard phase cycle and no
// tick delay.
func MakeBuilder() Builder {
	return Builder{
		idGenerator: id.NewParallelIDGenerator(),
		phases:      timing.StandardPhases().Phases(),
	}
}

// WithID sets the ID of the simulation. By default, a unique ID is generated.
func (b Builder) WithID(simID string) Builder {
	b.id = simID
	return b
}

// WithIDGenerator sets the generator used when no ID is given.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGenerator = g
	return b
}

// WithPhases sets the phase cycle of the clock.
func (b Builder) WithPhases(phases ...timing.Phase) Builder {
	b.phases = phases
	return b
}

// WithTickDelay sets how long the worker sleeps between ticks while running.
func (b Builder) WithTickDelay(d time.Duration) Builder {
	b.tickDelay = d
	return b
}

// WithRegistry sets the registry that keeps component names unique. Sharing
// a registry between simulations makes their names unique across them.
func (b Builder) WithRegistry(r *id.Registry[modeling.Component]) Builder {
	b.registry = r
	return b
}

// WithLogger sets the logger of the simulation.
func (b Builder) WithLogger(logger *logrus.Entry) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.tickDelay < 0 {
		panic("tick delay must not be negative")
	}

	if b.id == "" && b.idGenerator == nil {
		panic("either an ID or an ID generator is required")
	}
}

// Build builds the simulation. The simulation starts in the Initial state.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	simID := b.id
	if simID == "" {
		simID = b.idGenerator.Generate()
	}

	registry := b.registry
	if registry == nil {
		registry = id.NewRegistry[modeling.Component]()
	}

	logger := b.logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Simulation{
		id:         simID,
		clock:      timing.NewClock(timing.NewPhaseCycle(b.phases...)),
		log:        logger.WithField("simulation", simID),
		state:      StateInitial,
		tickDelay:  b.tickDelay,
		registry:   registry,
		done:       make(chan struct{}),
		workerDone: make(chan struct{}),
	}
	s.stateCond = sync.NewCond(&s.stateLock)

	return s
}
