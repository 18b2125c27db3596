// Package session orchestrates the solve-validate-apply cycle over an
// assembly. It is the single entry point the presentation layer drives:
// propose a connection, get back an all-or-nothing result.
package session

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/calder/trestle/pkg/assembly"
	"github.com/calder/trestle/pkg/config"
	"github.com/calder/trestle/pkg/observe"
	"github.com/calder/trestle/pkg/solver"
)

// Session binds an assembly to a solver and an observer. One cycle runs to
// completion before the next mutation; the mutex makes that a real critical
// section when the session is embedded in a threaded host, though the
// intended use is a single interactive thread.
type Session struct {
	mu     sync.Mutex
	asm    *assembly.Assembly
	cfg    config.Config
	solver *solver.Solver
	obs    observe.Observer
}

// New creates a session around an assembly. The solver's random source is
// seeded from the config so degenerate-geometry tie-breaks reproduce.
func New(asm *assembly.Assembly, cfg config.Config, obs observe.Observer) *Session {
	if obs == nil {
		obs = observe.Nop()
	}
	rng := rand.New(rand.NewSource(cfg.Solver.Seed))
	return &Session{
		asm:    asm,
		cfg:    cfg,
		solver: solver.New(cfg.SolverSettings(), rng, obs),
		obs:    obs,
	}
}

// Assembly returns the underlying assembly. Mutating it during a
// ProposeConnection call from another goroutine is a caller bug.
func (s *Session) Assembly() *assembly.Assembly {
	return s.asm
}

// Config returns the session configuration.
func (s *Session) Config() config.Config {
	return s.cfg
}

// ConnectResult is the outcome of a proposed connection. On failure the
// assembly is untouched and the link stays pending; Message carries the
// reason either way.
type ConnectResult struct {
	Success  bool
	Degraded bool
	MaxError float64
	Moved    int
	Message  string
}

// ProposeConnection attempts to bind the free end of a pending link to the
// target node, repositioning the connected assembly so every existing and
// new distance requirement holds within tolerance.
//
// Discovery, collection, solving and validation all work on a candidate
// plan; node positions are written only after the plan validates, and the
// link is bound only after the write. Any failure leaves every position
// bit-for-bit unchanged.
func (s *Session) ProposeConnection(link assembly.LinkID, target assembly.NodeID) ConnectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.asm.ValidLink(link) {
		return reject("no such link")
	}
	if !s.asm.Pending(link) {
		return reject("link is already bound")
	}
	if !s.asm.ValidNode(target) {
		return reject("no such target node")
	}
	anchor := s.asm.Anchor(link)
	if target == anchor {
		return reject("cannot connect a strut back to its own anchor")
	}

	required := s.asm.Length(link) + 2*s.cfg.NodeRadius
	nodes := s.asm.ReachableFrom(anchor, target)
	constraints := solver.Collect(s.asm, nodes, solver.Constraint{
		A:        anchor,
		B:        target,
		Distance: required,
		Link:     assembly.NoLink,
	}, s.cfg.NodeRadius)

	res := s.solver.Solve(s.asm, nodes, constraints)
	if !res.Converged {
		msg := fmt.Sprintf("no satisfying configuration within tolerance (max error %.4f after %d passes)",
			res.MaxError, res.Passes)
		s.obs.OnAction("connect rejected", msg)
		return ConnectResult{MaxError: res.MaxError, Message: msg}
	}

	tol := s.cfg.Solver.PositionTolerance
	maxErr, ok := res.Plan.Validate(constraints, tol*s.cfg.Solver.DegradedMultiplier)
	if !ok {
		// The solver said converged but the independent re-check disagrees.
		// Rare; points at a tolerance mismatch. Reject, keep everything.
		msg := fmt.Sprintf("plan validation failed (max error %.4f)", maxErr)
		s.obs.OnAction("connect rejected", msg)
		return ConnectResult{MaxError: maxErr, Message: msg}
	}

	moved := res.Plan.Apply(s.asm, tol)
	if err := s.asm.BindFree(link, target); err != nil {
		// Unreachable given the checks above; surface rather than panic.
		msg := fmt.Sprintf("bind failed: %v", err)
		s.obs.OnAction("connect rejected", msg)
		return ConnectResult{MaxError: maxErr, Message: msg}
	}
	s.refreshLocked(res.Plan.MovedNodes(tol))

	result := ConnectResult{
		Success:  true,
		Degraded: res.Degraded,
		MaxError: maxErr,
		Moved:    moved,
		Message:  fmt.Sprintf("connected (moved %d nodes, max error %.5f)", moved, maxErr),
	}
	if res.Degraded {
		result.Message += " [degraded]"
	}
	s.obs.OnAction("connect", result.Message)
	return result
}

func reject(msg string) ConnectResult {
	return ConnectResult{Message: msg}
}
