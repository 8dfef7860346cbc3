package asr

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
)

// Candidate is an (execution target, numeric precision) pair tried during
// engine initialization.
type Candidate struct {
	Target    string
	Precision string
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s/%s", c.Target, c.Precision)
}

// IsAccelerated reports whether target runs on a hardware accelerator.
func IsAccelerated(target string) bool {
	switch target {
	case "cuda", "metal", "gpu":
		return true
	}
	return false
}

// BuildCandidates returns the preferred candidate followed, when the preferred
// target is accelerated, by the variant's safe unaccelerated candidate.
// "auto" resolves to autoTarget.
func BuildCandidates(target, precision, autoTarget string, safe Candidate) []Candidate {
	if target == "" || target == "auto" {
		target = autoTarget
	}
	preferred := Candidate{Target: target, Precision: precision}
	candidates := []Candidate{preferred}
	if IsAccelerated(target) && preferred != safe {
		candidates = append(candidates, safe)
	}
	return candidates
}

type engineState int

const (
	stateUninitialized engineState = iota
	stateReady
	stateFailed
)

type loadFunc[H any] func(ctx context.Context, c Candidate) (H, error)

// engine caches the result of the first initialization attempt: a ready
// handle or the aggregated failure. Not safe for concurrent use.
type engine[H any] struct {
	backend string
	state   engineState
	handle  H
	active  Candidate
	err     error
}

func (e *engine[H]) ensure(ctx context.Context, candidates []Candidate, load loadFunc[H]) (H, error) {
	var zero H
	switch e.state {
	case stateReady:
		return e.handle, nil
	case stateFailed:
		return zero, e.err
	}

	attempts := make([]apperr.Attempt, 0, len(candidates))
	for _, c := range candidates {
		h, err := load(ctx, c)
		if err != nil {
			attempts = append(attempts, apperr.Attempt{Target: c.Target, Precision: c.Precision, Err: err})
			continue
		}
		e.state = stateReady
		e.handle = h
		e.active = c
		return h, nil
	}

	e.state = stateFailed
	e.err = apperr.EngineInit(e.backend, attempts)
	return zero, e.err
}

func (e *engine[H]) activeCandidate() (Candidate, bool) {
	return e.active, e.state == stateReady
}
