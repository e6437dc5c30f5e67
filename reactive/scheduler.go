package reactive

import (
	"errors"
	"fmt"
)

// Pause defers effect execution. Writes made while paused queue the affected
// effects instead of running them. Every Pause must be matched by a Resume;
// an unmatched Pause suspends reactivity for good.
func (rt *Runtime) Pause() {
	rt.pauseDepth++
	rt.counters.pauseDepth.Store(int64(rt.pauseDepth))
}

// Resume undoes one Pause. Resuming at depth zero does not change the depth.
// When the depth is zero afterwards and flush is true, every queued effect runs
// once, in the order it was queued, and the queue is emptied. With flush false
// queued effects wait for a later flushing Resume.
//
// Errors returned by the flushed effects are joined and returned.
func (rt *Runtime) Resume(flush bool) error {
	if rt.pauseDepth > 0 {
		rt.pauseDepth--
		rt.counters.pauseDepth.Store(int64(rt.pauseDepth))
	} else {
		rt.log.Debug().Msg("resume without matching pause")
	}
	if rt.pauseDepth > 0 || !flush {
		return nil
	}

	queued := rt.pending.drain()
	if len(queued) == 0 {
		return nil
	}
	rt.counters.flushes.Add(1)
	rt.log.Debug().Int("effects", len(queued)).Msg("flush")

	if rt.runDepth > 0 || rt.settling {
		// an effect body is on the stack, hand the queue to it
		for _, e := range queued {
			rt.deferred.add(e)
		}
		return nil
	}
	return errors.Join(rt.settle(queued)...)
}

// PauseDepth is the number of unmatched Pause calls.
func (rt *Runtime) PauseDepth() int {
	return rt.pauseDepth
}

// Pending is the number of effects waiting for a flush.
func (rt *Runtime) Pending() int {
	return rt.pending.len()
}

// Batch runs fn with effects paused and flushes once afterwards, so an effect
// that depends on several properties written by fn runs a single time.
// The flush happens even if fn fails or panics; nothing fn wrote is rolled back.
func (rt *Runtime) Batch(fn func() error) (err error) {
	rt.Pause()
	defer func() {
		err = errors.Join(err, rt.Resume(true))
	}()
	return fn()
}

// schedule runs, queues or defers effects hit by a trigger.
func (rt *Runtime) schedule(hit []*EffectRunner) {
	switch {
	case rt.pauseDepth > 0:
		for _, e := range hit {
			if !e.disposed && !e.running {
				rt.pending.add(e)
			}
		}
	case rt.runDepth > 0 || rt.settling:
		for _, e := range hit {
			if !e.disposed && !e.running {
				rt.deferred.add(e)
			}
		}
	default:
		rt.report(rt.settle(hit))
	}
}

// settleIfIdle drains effects deferred while an effect body was running.
func (rt *Runtime) settleIfIdle() {
	if rt.runDepth > 0 || rt.pauseDepth > 0 || rt.settling || rt.deferred.len() == 0 {
		return
	}
	rt.report(rt.settle(nil))
}

// settle runs first, then whatever those runs deferred, until nothing is left
// or one effect has run more often than the flush limit allows.
func (rt *Runtime) settle(first []*EffectRunner) (errs []error) {
	rt.settling = true
	rt.settleGen++
	gen := rt.settleGen
	defer func() {
		rt.settling = false
	}()

	next := first
	for {
		if len(next) == 0 {
			next = rt.deferred.drain()
		}
		if len(next) == 0 {
			return errs
		}
		for _, e := range next {
			if e.disposed {
				continue
			}
			if e.settleGen != gen {
				e.settleGen = gen
				e.settleRuns = 0
			}
			e.settleRuns++
			if e.settleRuns > rt.opts.flushLimit {
				rt.deferred.drain()
				return append(errs, fmt.Errorf("%w: %s ran %d times in one flush", ErrFlushLimit, e, rt.opts.flushLimit))
			}
			if err := rt.execute(e); err != nil {
				errs = append(errs, &EffectError{Effect: e, Err: err})
			}
		}
		next = nil
	}
}

func (rt *Runtime) report(errs []error) {
	for _, err := range errs {
		var from *EffectRunner
		var ee *EffectError
		if errors.As(err, &ee) {
			from = ee.Effect
		}
		if rt.opts.onError != nil {
			rt.opts.onError(from, err)
			continue
		}
		rt.log.Error().Err(err).Stringer("effect", from).Msg("effect failed")
	}
}
