package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/game"
	"github.com/pthm-cable/striker/telemetry"
)

// minChases is the number of completed chases per seed below which the
// error estimate is considered meaningless.
const minChases = 3

// noChasePenalty is the fitness of a seed without enough completed chases.
const noChasePenalty = 50.0

// Result summarises one evaluation over every seed.
type Result struct {
	Fitness   float64
	MAE       float64
	Chases    int
	Fallbacks int
}

// FitnessEvaluator runs seeded headless matches and scores how far the
// agent's predicted reach step was from the realised one.
type FitnessEvaluator struct {
	params      *ParamVector
	maxCycles   int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int

	mu   sync.Mutex
	last Result
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxCycles int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxCycles:   maxCycles,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 100,
	}
}

// Last returns the result of the most recent evaluation.
func (fe *FitnessEvaluator) Last() Result {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

type seedResult struct {
	mae       float64
	chases    int
	fallbacks int
	err       error
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// mean over seeds of the prediction mean absolute error.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runMatch(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total Result
	var maeSum float64
	for _, r := range results {
		fitness := r.mae
		if r.err != nil || r.chases < minChases {
			fitness = noChasePenalty
		}
		total.Fitness += fitness
		if r.err != nil {
			continue
		}
		maeSum += r.mae * float64(r.chases)
		total.Chases += r.chases
		total.Fallbacks += r.fallbacks
	}
	total.Fitness /= float64(len(fe.seeds))
	if total.Chases > 0 {
		total.MAE = maeSum / float64(total.Chases)
	}

	fe.mu.Lock()
	fe.last = total
	fe.mu.Unlock()
	return total.Fitness
}

// runMatch plays one seeded match with the parameters applied.
func (fe *FitnessEvaluator) runMatch(x []float64, seed int64) seedResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	var fallbacks int
	m, err := game.NewMatch(game.Options{
		Config:      cfg,
		Seed:        seed,
		MaxCycles:   fe.maxCycles,
		StatsWindow: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			fallbacks += stats.Fallbacks
		},
	})
	if err != nil {
		return seedResult{mae: math.Inf(1), err: err}
	}
	defer m.Close()

	if err := m.Run(context.Background()); err != nil {
		return seedResult{mae: math.Inf(1), err: err}
	}
	mae, chases := m.Collector().Accuracy()
	return seedResult{mae: mae, chases: chases, fallbacks: fallbacks}
}
