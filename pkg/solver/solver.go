package solver

import (
	"math"
	"math/rand"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/assembly"
	"github.com/calder/trestle/pkg/observe"
)

// Settings are the solver tunables. Zero values are invalid; start from
// DefaultSettings or the config package.
type Settings struct {
	// PositionTolerance is the per-constraint error below which a
	// constraint counts as satisfied.
	PositionTolerance float64

	// RelaxationFactor damps each correction, trading convergence speed
	// against oscillation.
	RelaxationFactor float64

	// MaxPasses bounds the iteration budget and with it worst-case latency.
	MaxPasses int

	// DegradedMultiplier scales the tolerance into the looser threshold
	// accepted when the budget runs out. This is policy, not a guarantee;
	// results admitted through it carry Degraded=true.
	DegradedMultiplier float64

	// CoincidenceEpsilon is the distance below which two points are treated
	// as coincident and the correction direction is randomized.
	CoincidenceEpsilon float64
}

// DefaultSettings returns the stock tunables.
func DefaultSettings() Settings {
	return Settings{
		PositionTolerance:  1e-3,
		RelaxationFactor:   0.5,
		MaxPasses:          500,
		DegradedMultiplier: 100,
		CoincidenceEpsilon: 1e-9,
	}
}

// Solver runs relaxation passes over a constraint list. The random source
// is used only to break coincident-point degeneracies; fixing its seed
// makes runs reproducible.
type Solver struct {
	settings Settings
	rng      *rand.Rand
	obs      observe.Observer
}

// New creates a solver. A nil rng gets a fixed-seed source; a nil observer
// gets the no-op one.
func New(settings Settings, rng *rand.Rand, obs observe.Observer) *Solver {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if obs == nil {
		obs = observe.Nop()
	}
	return &Solver{settings: settings, rng: rng, obs: obs}
}

// Settings returns the solver's tunables.
func (s *Solver) Settings() Settings {
	return s.settings
}

// Result is the outcome of one solve attempt. Degraded marks termination
// through the loose budget-exhausted threshold rather than true
// convergence; callers must not treat the two alike.
type Result struct {
	Converged bool
	Degraded  bool
	MaxError  float64
	Passes    int
	Plan      Plan
}

// Solve iterates positions for the given node set until every constraint is
// within tolerance or the pass budget runs out. Node positions in the
// assembly are read once at the start and never written; the candidate
// positions live in the returned plan.
//
// Per-node stiffness is 1 + bound degree, so heavily-connected nodes move
// less. Locked nodes do not move at all: their share of a correction goes
// to the opposite endpoint.
func (s *Solver) Solve(asm *assembly.Assembly, nodes []assembly.NodeID, constraints []Constraint) Result {
	plan := make(Plan, len(nodes))
	for _, id := range nodes {
		plan[id] = &PlanEntry{
			Original:  asm.Pos(id),
			Candidate: asm.Pos(id),
			Stiffness: float64(1 + asm.BoundDegree(id)),
			Locked:    asm.Locked(id),
		}
	}

	tol := s.settings.PositionTolerance
	maxErr := 0.0
	pass := 0
	converged := false

	for ; pass < s.settings.MaxPasses; pass++ {
		maxErr = 0
		for _, c := range constraints {
			ea, eb := plan[c.A], plan[c.B]
			if ea == nil || eb == nil {
				continue // constraint endpoint outside the solve set
			}

			delta := eb.Candidate.Sub(ea.Candidate)
			dist := delta.Length()

			var dir v3.Vec
			if dist < s.settings.CoincidenceEpsilon {
				// Coincident points leave the correction direction
				// undefined. Pick a random unit vector so the pair can
				// separate at all; with a fixed seed this stays
				// reproducible. A known approximation, not a general fix.
				dir = s.randomUnit()
			} else {
				dir = delta.DivScalar(dist)
			}

			err := dist - c.Distance
			if abs := math.Abs(err); abs > maxErr {
				maxErr = abs
			}
			if math.Abs(err) <= tol {
				continue
			}

			wa, wb, movable := splitWeights(ea, eb)
			if !movable {
				continue
			}
			correction := err * s.settings.RelaxationFactor
			ea.Candidate = ea.Candidate.Add(dir.MulScalar(correction * wa))
			eb.Candidate = eb.Candidate.Sub(dir.MulScalar(correction * wb))
		}

		s.obs.OnSolverStep(pass, maxErr)
		if maxErr <= tol {
			converged = true
			pass++
			break
		}
	}

	result := Result{
		Converged: converged,
		MaxError:  maxErr,
		Passes:    pass,
		Plan:      plan,
	}
	if !converged && maxErr <= tol*s.settings.DegradedMultiplier {
		// Budget exhausted but the residual is tolerable. Admit the result,
		// flagged so callers can tell it apart from true convergence.
		result.Converged = true
		result.Degraded = true
	}
	return result
}

// splitWeights distributes a correction between two endpoints by inverse
// stiffness. Locked endpoints get weight zero; if both are locked the
// constraint cannot be corrected.
func splitWeights(a, b *PlanEntry) (wa, wb float64, movable bool) {
	invA, invB := 0.0, 0.0
	if !a.Locked {
		invA = 1 / a.Stiffness
	}
	if !b.Locked {
		invB = 1 / b.Stiffness
	}
	sum := invA + invB
	if sum == 0 {
		return 0, 0, false
	}
	return invA / sum, invB / sum, true
}

// randomUnit samples a uniformly distributed direction on the unit sphere.
func (s *Solver) randomUnit() v3.Vec {
	z := 2*s.rng.Float64() - 1
	theta := 2 * math.Pi * s.rng.Float64()
	r := math.Sqrt(1 - z*z)
	return v3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
}
