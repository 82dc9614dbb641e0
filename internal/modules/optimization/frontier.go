package optimization

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/optimize"
)

const defaultFrontierPoints = 20

// GridFrontier traces the frontier by solving a minimum-variance problem for
// each target return on an evenly spaced grid between the lowest and highest
// instrument expected return. Points are solved concurrently.
type GridFrontier struct {
	log zerolog.Logger
}

// NewGridFrontier creates the deterministic frontier strategy.
func NewGridFrontier(log zerolog.Logger) *GridFrontier {
	return &GridFrontier{log: log.With().Str("component", "frontier_grid").Logger()}
}

// Name implements FrontierStrategy.
func (g *GridFrontier) Name() string { return "grid" }

// Compute implements FrontierStrategy.
func (g *GridFrontier) Compute(ctx context.Context, model *RiskModel, riskFreeRate float64, points int) (Frontier, error) {
	if points < 2 {
		points = defaultFrontierPoints
	}
	lo, hi := returnRange(model)
	if hi <= lo {
		return Frontier{}, fmt.Errorf("degenerate return range [%f, %f]", lo, hi)
	}

	type solved struct {
		point FrontierPoint
		ok    bool
	}
	results := make([]solved, points)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(4)

	for i := 0; i < points; i++ {
		i := i
		target := lo + (hi-lo)*float64(i)/float64(points-1)
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			point, ok := g.solveTarget(model, riskFreeRate, target)
			results[i] = solved{point: point, ok: ok}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Frontier{}, err
	}

	frontier := Frontier{Strategy: g.Name()}
	for _, r := range results {
		if !r.ok {
			frontier.Skipped++
			continue
		}
		frontier.Points = append(frontier.Points, r.point)
	}
	sort.Slice(frontier.Points, func(i, j int) bool {
		return frontier.Points[i].TargetReturn < frontier.Points[j].TargetReturn
	})
	return frontier, nil
}

// solveTarget minimizes portfolio variance subject to penalized budget and
// target-return constraints.
func (g *GridFrontier) solveTarget(model *RiskModel, riskFreeRate, target float64) (FrontierPoint, bool) {
	n := len(model.Symbols)

	objective := func(x []float64) float64 {
		w := projectToBounds(x)
		returnDiff := model.portfolioReturn(w) - target
		return model.portfolioVariance(w) + penaltyWeight*(returnDiff*returnDiff+sumPenalty(w))
	}

	gradient := func(grad, x []float64) {
		w := projectToBounds(x)
		sigmaW := model.covMul(w)
		returnDiff := model.portfolioReturn(w) - target
		sumDiff := sum(w) - 1
		for i := range grad {
			grad[i] = 2*sigmaW[i] + penaltyWeight*(2*returnDiff*model.Mean[i]+2*sumDiff)
		}
	}

	problem := optimize.Problem{Func: objective, Grad: gradient}
	solution, err := solve(problem, equalWeights(n), g.log)
	if err != nil {
		g.log.Debug().Err(err).Float64("target", target).Msg("Frontier point skipped")
		return FrontierPoint{}, false
	}

	weights := projectToBounds(solution)
	normalize(weights)

	expectedReturn := model.portfolioReturn(weights)
	// Reject points whose solved return drifted away from the target; the
	// penalty formulation makes the constraint soft.
	if math.Abs(expectedReturn-target) > 0.02 {
		return FrontierPoint{}, false
	}

	volatility := model.portfolioVolatility(weights)
	sharpe := 0.0
	if volatility > 0 {
		sharpe = (expectedReturn - riskFreeRate) / volatility
	}
	return FrontierPoint{
		TargetReturn:   target,
		ExpectedReturn: expectedReturn,
		Volatility:     volatility,
		SharpeRatio:    sharpe,
	}, true
}

// SamplingFrontier approximates the frontier by drawing random long-only
// weight vectors and keeping the lowest-volatility portfolio per return
// bucket. Cheaper than the grid solver and good enough for charting.
//
// One instance serves all requests, so Compute must not share generator
// state: each call derives its own rand.Rand from the seed and a call
// counter.
type SamplingFrontier struct {
	samples int
	seed    int64
	calls   atomic.Int64
	log     zerolog.Logger
}

// NewSamplingFrontier creates the sampling strategy. A non-zero seed makes
// the first Compute call deterministic.
func NewSamplingFrontier(samples int, seed int64, log zerolog.Logger) *SamplingFrontier {
	if samples <= 0 {
		samples = 5000
	}
	if seed == 0 {
		seed = rand.Int63()
	}
	return &SamplingFrontier{
		samples: samples,
		seed:    seed,
		log:     log.With().Str("component", "frontier_sampling").Logger(),
	}
}

// Name implements FrontierStrategy.
func (s *SamplingFrontier) Name() string { return "sampling" }

// Compute implements FrontierStrategy.
func (s *SamplingFrontier) Compute(ctx context.Context, model *RiskModel, riskFreeRate float64, points int) (Frontier, error) {
	if points < 2 {
		points = defaultFrontierPoints
	}
	n := len(model.Symbols)
	if n < minInstruments {
		return Frontier{}, fmt.Errorf("need at least %d instruments", minInstruments)
	}

	rng := rand.New(rand.NewSource(s.seed + s.calls.Add(1) - 1))

	type sample struct {
		ret float64
		vol float64
	}
	samples := make([]sample, 0, s.samples)
	weights := make([]float64, n)

	for k := 0; k < s.samples; k++ {
		if k%512 == 0 {
			if err := ctx.Err(); err != nil {
				return Frontier{}, err
			}
		}
		// Exponential draws normalized to the simplex give a uniform
		// Dirichlet(1) sample.
		var total float64
		for i := range weights {
			weights[i] = rng.ExpFloat64()
			total += weights[i]
		}
		for i := range weights {
			weights[i] /= total
		}
		samples = append(samples, sample{
			ret: model.portfolioReturn(weights),
			vol: model.portfolioVolatility(weights),
		})
	}

	lo, hi := samples[0].ret, samples[0].ret
	for _, sm := range samples {
		lo = math.Min(lo, sm.ret)
		hi = math.Max(hi, sm.ret)
	}
	if hi <= lo {
		return Frontier{}, fmt.Errorf("degenerate sampled return range")
	}

	// Lowest-volatility sample per return bucket.
	best := make([]*sample, points)
	for i := range samples {
		sm := &samples[i]
		bucket := int(float64(points-1) * (sm.ret - lo) / (hi - lo))
		if best[bucket] == nil || sm.vol < best[bucket].vol {
			best[bucket] = sm
		}
	}

	frontier := Frontier{Strategy: s.Name()}
	for i, sm := range best {
		if sm == nil {
			frontier.Skipped++
			continue
		}
		sharpe := 0.0
		if sm.vol > 0 {
			sharpe = (sm.ret - riskFreeRate) / sm.vol
		}
		frontier.Points = append(frontier.Points, FrontierPoint{
			TargetReturn:   lo + (hi-lo)*float64(i)/float64(points-1),
			ExpectedReturn: sm.ret,
			Volatility:     sm.vol,
			SharpeRatio:    sharpe,
		})
	}
	return frontier, nil
}

func returnRange(model *RiskModel) (lo, hi float64) {
	lo, hi = model.Mean[0], model.Mean[0]
	for _, m := range model.Mean {
		lo = math.Min(lo, m)
		hi = math.Max(hi, m)
	}
	return lo, hi
}
