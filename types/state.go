// state.go defines the instance lifecycle State enum and the central
// transition table.

package types

import "fmt"

// State is the lifecycle state of a codec instance. An instance is always
// in exactly one state; all transitions go through Instance.SetState which
// enforces the table below.
type State int

const (
	// StateFree is the implicit state of an unoccupied slot.
	StateFree State = iota

	// StateCreated: the instance was just opened.
	StateCreated

	// StateInit: initial parameters/handles are set.
	StateInit

	// StateConfig: encoder-only intermediate configuration state.
	StateConfig

	// StateHeader: decoder has its sequence metadata parsed.
	StateHeader

	// StateRunning: the instance is actively processing units of work.
	StateRunning

	// StateFlush: an explicit flush or end-of-stream was requested.
	StateFlush

	// StateResolutionChange: the decoder detected a mid-stream format change.
	StateResolutionChange

	// StateFinish: the instance stopped streaming.
	StateFinish

	// StateDeinit: the instance is about to be released; the only state
	// from which a close succeeds without forcing further transitions.
	StateDeinit

	// StateError: the hardware timed out or reported a failure.
	StateError

	// StateAbort: the work for this instance was cancelled.
	StateAbort

	EndOfState
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateCreated:
		return "created"
	case StateInit:
		return "init"
	case StateConfig:
		return "config"
	case StateHeader:
		return "header"
	case StateRunning:
		return "running"
	case StateFlush:
		return "flush"
	case StateResolutionChange:
		return "resolution_change"
	case StateFinish:
		return "finish"
	case StateDeinit:
		return "deinit"
	case StateError:
		return "error"
	case StateAbort:
		return "abort"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether no further hardware submissions are accepted
// from this state.
func (s State) IsTerminal() bool {
	switch s {
	case StateDeinit, StateError, StateAbort:
		return true
	}
	return false
}

// AllowsSubmit reports whether a unit of work may be submitted from this
// state (possibly auto-advancing to StateRunning first).
func (s State) AllowsSubmit() bool {
	switch s {
	case StateInit, StateConfig, StateHeader, StateRunning:
		return true
	}
	return false
}

var stateTransitions = map[State][]State{
	StateFree:    {StateCreated},
	StateCreated: {StateInit, StateDeinit},
	StateInit: {
		StateConfig,
		StateHeader,
		StateRunning,
		StateDeinit,
	},
	StateConfig: {StateRunning, StateDeinit},
	StateHeader: {StateRunning, StateDeinit},
	StateRunning: {
		StateFlush,
		StateResolutionChange,
	},
	StateFlush:            {StateFinish, StateDeinit},
	StateResolutionChange: {StateRunning, StateFlush},
	StateFinish:           {StateDeinit},
	StateDeinit:           {},
	StateError:            {StateDeinit},
	StateAbort:            {StateDeinit},
}

// CanTransitionTo reports whether the transition s -> to is legal.
//
// Any non-Deinit state may transition to StateError (timeout, hardware
// fault, invariant violation) or StateAbort (explicit cancellation).
func (s State) CanTransitionTo(to State) bool {
	if s == to {
		return false
	}
	if to == StateError || to == StateAbort {
		return s != StateDeinit
	}
	for _, allowed := range stateTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}
