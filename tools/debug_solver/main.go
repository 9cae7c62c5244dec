package main

import (
	"context"
	"fmt"
	"os"

	calc "github.com/rpgo/actuarial-engine/internal/calculation"
	"github.com/rpgo/actuarial-engine/internal/config"
	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Prints the solver objective over a grid of contribution rates so a
// NO_BRACKET or MAX_ITERS_REACHED outcome can be inspected by eye.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_solver <config-file> [steps]")
		return
	}
	f := os.Args[1]
	steps := 20
	if len(os.Args) > 2 {
		if _, err := fmt.Sscanf(os.Args[2], "%d", &steps); err != nil || steps < 1 {
			fmt.Println("steps must be a positive integer")
			return
		}
	}
	p := config.NewInputParser()
	cfg, err := p.LoadFromFile(f)
	if err != nil {
		panic(err)
	}
	ctx := context.Background()
	engine := calc.NewEngine(nil, cfg.Engine)
	state := cfg.Participant.WithDefaults()

	fmt.Println("Rate,VPABenefits,VPAContributions,DeficitSurplus,EstimatedBenefit,Warnings")
	for i := 0; i <= steps; i++ {
		rate := decimal.NewFromInt(int64(i)).Div(decimal.NewFromInt(int64(steps)))
		s := state
		s.ContributionRate = rate
		s.SolveFor = domain.SolveNone
		res, err := engine.Compute(ctx, s)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s,%.2f,%.2f,%.2f,%.2f,%d\n", rate.StringFixed(4), res.VPABenefits, res.VPAContributions, res.DeficitSurplus, res.EstimatedBenefit, len(res.Warnings))
	}

	res, err := engine.SolveContributionRate(ctx, state)
	if err != nil {
		fmt.Printf("\nSolve: err=%v\n", err)
		return
	}
	fmt.Printf("\nSolve: %+v\n", *res.Solver)
	for _, w := range res.Warnings {
		fmt.Printf("  %s: %s\n", w.Code, w.Message)
	}
}
