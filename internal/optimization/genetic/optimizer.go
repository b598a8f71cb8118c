package genetic

import (
	"context"
	"math"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/HELIX/internal/logging"
	"github.com/copyleftdev/HELIX/internal/optimization"
)

// Config contains construction-time settings for a GeneticOptimizer.
type Config struct {
	// Evaluator scores candidate parameter assignments
	Evaluator optimization.Evaluator

	// Parameters are the names of the values being optimized, in order
	Parameters []string

	// Bounds holds the closed [lo, hi] interval for each parameter
	Bounds [][2]float64

	// PopulationSize is the number of individuals kept per generation
	PopulationSize int

	// Precision is the number of decimals for reported scores.
	// Zero means the default of 5.
	Precision int

	// RandomSeed seeds the run's single random source.
	// Zero seeds from the clock.
	RandomSeed int64

	// Logger for progress output. Optional.
	Logger *logging.Logger
}

// GeneticOptimizer searches a bounded continuous parameter space by
// evolving a fixed-size population through selection, crossover, mutation,
// and elitism. The population persists across Optimize calls, so a caller
// can continue a search by running again on the same optimizer.
//
// Not safe for concurrent Optimize calls on the same instance.
type GeneticOptimizer struct {
	cfg Config

	// Current population; carried over between runs
	pop Population

	// Single random source for the optimizer's lifetime
	rng *rand.Rand

	// Best solution of the most recent run's final population
	best *optimization.Solution

	logger *logging.Logger

	// Engine-internal progress logger, fed through the service logger
	zlog *zap.Logger
}

// NewGeneticOptimizer creates an optimizer and draws its initial population
// uniformly within bounds.
func NewGeneticOptimizer(cfg Config) (*GeneticOptimizer, error) {
	if cfg.Evaluator == nil {
		return nil, optimization.NewConfigError("evaluator is required").
			WithComponent("genetic").
			WithOperation("NewGeneticOptimizer")
	}
	if len(cfg.Parameters) != len(cfg.Bounds) {
		return nil, optimization.NewConfigErrorf(
			"parameter list must match boundaries: %d parameters, %d bounds",
			len(cfg.Parameters), len(cfg.Bounds)).
			WithComponent("genetic").
			WithOperation("NewGeneticOptimizer")
	}
	for i, b := range cfg.Bounds {
		if b[0] >= b[1] {
			return nil, optimization.NewConfigErrorf(
				"bounds for %q must satisfy lo < hi, got [%v, %v]",
				cfg.Parameters[i], b[0], b[1]).
				WithComponent("genetic").
				WithOperation("NewGeneticOptimizer")
		}
	}

	if cfg.PopulationSize < 1 {
		cfg.PopulationSize = 10 // Default value
	}
	if cfg.Precision == 0 {
		cfg.Precision = 5 // Default value
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New(logging.InfoLevel, os.Stderr)
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	if cfg.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &GeneticOptimizer{
		cfg:    cfg,
		pop:    newPopulation(cfg.PopulationSize, cfg.Bounds, rng),
		rng:    rng,
		logger: cfg.Logger,
		zlog:   logging.NewZapLogger(cfg.Logger),
	}, nil
}

// Optimize runs the generational loop for the configured number of
// generations and returns the best individual of the final population along
// with the convergence history (one rounded best score per generation,
// recorded on the population entering that generation, before breeding).
func (g *GeneticOptimizer) Optimize(ctx context.Context, rc optimization.RunConfig) (*optimization.Result, error) {
	if rc.Generations < 1 {
		rc.Generations = 500 // Default value
	}
	if rc.Exploration <= 0 {
		rc.Exploration = 0.25 // Default value
	}
	if rc.KeepTop < 1 {
		rc.KeepTop = 1
	}

	var minimize bool
	switch rc.Objective {
	case "maximize":
		minimize = false
	case "minimize":
		minimize = true
	default:
		return nil, optimization.NewConfigErrorf("%q invalid: opt [maximize/minimize]", rc.Objective).
			WithComponent("genetic").
			WithOperation("Optimize")
	}

	strategy, err := ParseStrategy(rc.Selection)
	if err != nil {
		return nil, err
	}

	keepTop := rc.KeepTop
	if keepTop > g.cfg.PopulationSize {
		g.logger.Warn("keep_top greater than population size, defaulting to standard", map[string]interface{}{
			"keep_top":        keepTop,
			"population_size": g.cfg.PopulationSize,
		})
		keepTop = 1
	}

	fitness := g.fitnessFunc(minimize)
	history := make([]float64, 0, rc.Generations)

	for gen := 0; gen < rc.Generations; gen++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sorted, fits, err := sortByFitness(g.pop, fitness)
		if err != nil {
			return nil, err
		}

		best, err := g.Predict(sorted[len(sorted)-1].Values)
		if err != nil {
			return nil, err
		}
		history = append(history, roundTo(best, g.cfg.Precision))

		next, err := g.breed(sorted, fits, strategy, rc, keepTop)
		if err != nil {
			return nil, err
		}
		g.pop = next

		if rc.Verbose {
			g.logGeneration(gen, best)
		}
	}

	sorted, _, err := sortByFitness(g.pop, fitness)
	if err != nil {
		return nil, err
	}
	bestInd := sorted[len(sorted)-1]
	prediction, err := g.Predict(bestInd.Values)
	if err != nil {
		return nil, err
	}

	g.best = &optimization.Solution{
		Parameters: append([]float64(nil), bestInd.Values...),
		Value:      prediction,
	}

	return &optimization.Result{
		BestSolution: g.best,
		History:      history,
		Generations:  rc.Generations,
	}, nil
}

// BestSolution returns the best solution of the most recent run, or nil if
// no run has completed.
func (g *GeneticOptimizer) BestSolution() *optimization.Solution {
	return g.best
}

// Predict returns the raw evaluator score for a value vector, with no
// minimize/maximize sign adjustment.
func (g *GeneticOptimizer) Predict(values []float64) (float64, error) {
	return g.cfg.Evaluator.Score(values)
}

// Population returns the current population.
func (g *GeneticOptimizer) Population() Population {
	return g.pop
}

// Parameters returns the configured parameter names.
func (g *GeneticOptimizer) Parameters() []string {
	return g.cfg.Parameters
}

// breed builds the next generation: popSize - keepTop children produced by
// selection, crossover, and mutation, plus the keepTop highest-fitness
// individuals of the pre-breeding population carried over unchanged.
// Parents are drawn with replacement; an individual may mate with itself.
func (g *GeneticOptimizer) breed(sorted Population, fits []float64, strategy Strategy, rc optimization.RunConfig, keepTop int) (Population, error) {
	n := g.cfg.PopulationSize
	next := make(Population, 0, n)

	var summation float64
	switch strategy {
	case StrategyRank:
		summation = rankSummation(n)
	case StrategyRoulette:
		summation = rawSummation(fits)
	}

	for i := 0; i < n-keepTop; i++ {
		p1, r1 := g.selectParent(sorted, fits, strategy, summation)
		p2, r2 := g.selectParent(sorted, fits, strategy, summation)

		rate := rc.Exploration
		if rc.Adaptive {
			rate = adaptiveRate(rc.Exploration, invertRank(r1, n), invertRank(r2, n), n)
		}

		child := crossover(p1, p2)
		next = append(next, mutate(child, g.cfg.Bounds, rate, g.rng))
	}

	// Keeping the previous pool's top performers guarantees the best score
	// seen so far is never lost, which permits higher exploration rates.
	for x := 1; x <= keepTop; x++ {
		next = append(next, sorted[len(sorted)-x].Clone())
	}
	return next, nil
}

// selectParent dispatches to the configured selection strategy.
func (g *GeneticOptimizer) selectParent(sorted Population, fits []float64, strategy Strategy, summation float64) (Individual, int) {
	if strategy == StrategyRoulette {
		return selectRoulette(sorted, fits, summation, g.rng)
	}
	return selectRank(sorted, summation, g.rng)
}

// fitnessFunc returns the sign-adjusted fitness reader: the raw score,
// negated when minimizing, so all selection logic assumes maximization.
func (g *GeneticOptimizer) fitnessFunc(minimize bool) func(Individual) (float64, error) {
	return func(ind Individual) (float64, error) {
		v, err := g.cfg.Evaluator.Score(ind.Values)
		if err != nil {
			return 0, err
		}
		if minimize {
			return -v, nil
		}
		return v, nil
	}
}

// logGeneration dumps the generation's best score and population at debug.
func (g *GeneticOptimizer) logGeneration(gen int, best float64) {
	individuals := make([]map[string]float64, len(g.pop))
	for i, ind := range g.pop {
		individuals[i] = optimization.ParamMap(g.cfg.Parameters, ind.Values)
	}
	g.zlog.Debug("generation complete",
		zap.Int("generation", gen+1),
		zap.Float64("best", best),
		zap.Any("population", individuals),
	)
}

// roundTo rounds v to the given number of decimals.
func roundTo(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
