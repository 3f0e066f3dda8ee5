package simulation

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/timing"
)

// LogListener writes every notification to a logger. Time changes are logged
// at the trace level since there is one per phase.
type LogListener struct {
	log *logrus.Entry
}

// NewLogListener creates a LogListener. A nil logger means the standard
// logrus logger.
func NewLogListener(logger *logrus.Entry) *LogListener {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &LogListener{log: logger}
}

func (l *LogListener) entry(s *Simulation) *logrus.Entry {
	return l.log.WithField("simulation", s.ID())
}

// StateChanged logs the new state.
func (l *LogListener) StateChanged(s *Simulation, state State) {
	l.entry(s).WithField("state", state.String()).Info("state changed")
}

// TimeChanged logs the new time.
func (l *LogListener) TimeChanged(s *Simulation, now timing.Time) {
	l.entry(s).WithField("time", now.String()).Trace("time changed")
}

// TickDelayChanged logs the new delay.
func (l *LogListener) TickDelayChanged(s *Simulation, delay time.Duration) {
	l.entry(s).WithField("delay", delay.String()).Info("tick delay changed")
}

// ComponentAdded logs the name of the component.
func (l *LogListener) ComponentAdded(s *Simulation, c modeling.Component) {
	l.entry(s).WithField("component", c.Name()).Debug("component added")
}

// ComponentRemoved logs the name of the component.
func (l *LogListener) ComponentRemoved(s *Simulation, c modeling.Component) {
	l.entry(s).WithField("component", c.Name()).Debug("component removed")
}
