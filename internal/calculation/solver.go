package calculation

import (
	"fmt"
	"math"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// Objective is a scalar function searched for a root. Errors abort the search.
type Objective func(x float64) (float64, error)

// Bisection is a bounded bisection root finder. The objective must change
// sign over [Lower, Upper]; the search stops when |f(x)| <= Tolerance or after
// MaxIterations evaluations of the midpoint.
type Bisection struct {
	Lower         float64
	Upper         float64
	Tolerance     float64
	MaxIterations int
}

// Solve runs the search. Failure to converge is reported through the outcome
// status, not as an error:
//   - CONVERGED: Value is within tolerance.
//   - MAX_ITERS_REACHED: Value is the best iterate found.
//   - NO_BRACKET: f has the same sign at both bounds; Value is the better bound.
//   - DEGENERATE: f is flat over the domain or not finite; Value is 0.
func (b Bisection) Solve(f Objective) (domain.SolverOutcome, error) {
	out := domain.SolverOutcome{Status: domain.SolverNotStarted, Tolerance: b.Tolerance}
	if !(b.Lower < b.Upper) {
		return out, fmt.Errorf("invalid search interval [%v, %v]", b.Lower, b.Upper)
	}
	if b.MaxIterations <= 0 {
		return out, fmt.Errorf("max iterations must be positive, got %d", b.MaxIterations)
	}
	defer func() { solverIterations.Observe(float64(out.Iterations)) }()

	lo, hi := b.Lower, b.Upper
	fLo, err := f(lo)
	if err != nil {
		return out, err
	}
	fHi, err := f(hi)
	if err != nil {
		return out, err
	}
	out.Iterations = 2
	out.Status = domain.SolverIterating

	if !finite(fLo) || !finite(fHi) || fLo == fHi {
		out.Status = domain.SolverDegenerate
		out.Value, out.Residual = 0, fLo
		return out, nil
	}

	best, fBest := lo, fLo
	if math.Abs(fHi) < math.Abs(fLo) {
		best, fBest = hi, fHi
	}
	if math.Abs(fBest) <= b.Tolerance {
		out.Status = domain.SolverConverged
		out.Value, out.Residual = best, fBest
		return out, nil
	}
	if math.Signbit(fLo) == math.Signbit(fHi) {
		out.Status = domain.SolverNoBracket
		out.Value, out.Residual = best, fBest
		return out, nil
	}

	for i := 0; i < b.MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		fMid, err := f(mid)
		if err != nil {
			return out, err
		}
		out.Iterations++
		if !finite(fMid) {
			out.Status = domain.SolverDegenerate
			out.Value, out.Residual = 0, fMid
			return out, nil
		}
		if math.Abs(fMid) < math.Abs(fBest) {
			best, fBest = mid, fMid
		}
		if math.Abs(fMid) <= b.Tolerance {
			out.Status = domain.SolverConverged
			out.Value, out.Residual = mid, fMid
			return out, nil
		}
		if math.Signbit(fMid) == math.Signbit(fLo) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}

	out.Status = domain.SolverMaxIterations
	out.Value, out.Residual = best, fBest
	return out, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
