package simulation

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phasesim/sim/termination"
)

func (s *Simulation) work() {
	defer close(s.workerDone)

	for s.waitForWork() {
		if err := s.tick(); err != nil {
			s.fail(err)
			return
		}

		if !s.endTick() {
			return
		}
	}
}

// waitForWork blocks until there is a tick to run. It returns false once the
// simulation is finished.
func (s *Simulation) waitForWork() bool {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	for !s.state.IsActive() && s.state != StateFinished {
		s.stateCond.Wait()
	}

	return s.state != StateFinished
}

// tick dispatches the remaining phases of the current tick, one phase at a
// time. The membership is read once per phase.
func (s *Simulation) tick() error {
	first := s.clock.Phases().First()

	for {
		now := s.clock.Now()

		for _, c := range s.Components() {
			if err := c.Dispatch(now); err != nil {
				return fmt.Errorf("%s at %s: %w", c.Name(), now, err)
			}

			s.checkTerminator(c)
		}

		next := s.clock.Advance()
		s.notify(func(l Listener) { l.TimeChanged(s, next) })

		if next.Phase == first {
			s.log.WithField("tick", now.Tick).Debug("tick completed")
			return nil
		}
	}
}

func (s *Simulation) checkTerminator(c any) {
	t, ok := c.(termination.Terminator)
	if !ok || !t.Reached() {
		return
	}

	if s.State() == StateFinished {
		return
	}

	s.log.WithField("terminator", t.Name()).Info("termination reached")

	// Finish can only fail if another goroutine finished first.
	_ = s.Finish()
}

// endTick moves a stepping simulation back to Ready, or sleeps for the tick
// delay of a running one. It returns false if the worker should stop.
func (s *Simulation) endTick() bool {
	s.stateLock.Lock()
	state := s.state
	delay := s.tickDelay
	s.stateLock.Unlock()

	switch state {
	case StateFinished:
		return false
	case StateStepping:
		// A concurrent Finish or Run wins over the automatic transition.
		_ = s.transitionFrom("step done", &state, StateReady)
		return true
	}

	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-s.done:
		return false
	case <-timer.C:
		return true
	}
}

func (s *Simulation) fail(err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"time": s.clock.Now().String(),
	}).Error("worker stopped")

	s.stateLock.Lock()
	s.err = err
	s.stateLock.Unlock()

	_ = s.Finish()
}
