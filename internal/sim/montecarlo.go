// Package sim repeats attack resolution many times and aggregates the
// per-trial outcomes.
package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pefman/w40k-sim/internal/engine"
	"github.com/pefman/w40k-sim/internal/game"
	"github.com/pefman/w40k-sim/internal/stats"
)

// DefaultIterations matches the command line default.
const DefaultIterations = 5000

// ErrNoIterations is returned when a run asks for fewer than one trial.
var ErrNoIterations = errors.New("iterations must be at least 1")

// SimulationResult holds every trial of one run. It is not modified after
// Run returns.
type SimulationResult struct {
	Attacker   string                `json:"attacker"`
	Defender   string                `json:"defender"`
	Weapon     string                `json:"weapon"`
	Iterations int                   `json:"iterations"`
	Seed       uint64                `json:"seed"`
	Damage     []int                 `json:"damage_distribution"` // indexed by trial
	Kills      int                   `json:"kills"`               // trials with at least one kill
	Stats      game.AttackStatistics `json:"stats"`
}

// AverageDamage is the mean damage per trial.
func (r *SimulationResult) AverageDamage() float64 {
	if r.Iterations == 0 {
		return 0
	}
	sum := 0
	for _, d := range r.Damage {
		sum += d
	}
	return float64(sum) / float64(r.Iterations)
}

// KillProbability is the fraction of trials with at least one kill.
func (r *SimulationResult) KillProbability() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return float64(r.Kills) / float64(r.Iterations)
}

// Percentile of the damage distribution, p in [0,100].
func (r *SimulationResult) Percentile(p float64) float64 {
	return stats.Percentile(r.Damage, p)
}

// Runner executes simulations. The zero value is usable: it resolves with
// the default keyword rules on GOMAXPROCS workers and a random seed.
type Runner struct {
	Resolver *game.Resolver
	Workers  int
	// Seed fixes the random streams. With the same Seed and Workers a run
	// is reproduced exactly. Zero draws a fresh seed per run.
	Seed uint64
	// OnProgress, when set, is called with the number of finished trials
	// roughly every ProgressEvery trials and once at the end. Calls are
	// serialized.
	OnProgress    func(done, total int)
	ProgressEvery int
	Logger        *zap.Logger
}

// Run resolves weapon against defender iterations times. Trials are split
// into contiguous blocks, one per worker, and each worker draws from its
// own stream. A trial error or ctx cancellation aborts the whole run.
func (rn *Runner) Run(ctx context.Context, attacker game.UnitProfile, weapon game.WeaponProfile, defender game.UnitProfile, mods game.AttackModifiers, iterations int) (*SimulationResult, error) {
	if iterations < 1 {
		return nil, ErrNoIterations
	}
	if err := weapon.Attacks.Validate(); err != nil {
		return nil, fmt.Errorf("%s attacks: %w", weapon.Name, err)
	}
	if err := weapon.Damage.Validate(); err != nil {
		return nil, fmt.Errorf("%s damage: %w", weapon.Name, err)
	}

	resolver := rn.Resolver
	if resolver == nil {
		resolver = game.NewResolver(nil)
	}
	logger := rn.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := rn.Seed
	if seed == 0 {
		var err error
		if seed, err = engine.NewSeed(); err != nil {
			return nil, err
		}
	}
	workers := rn.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, iterations)

	every := rn.ProgressEvery
	if every <= 0 {
		every = max(1, iterations/100)
	}
	progress := newProgress(rn.OnProgress, iterations)

	start := time.Now()
	res := &SimulationResult{
		Attacker:   attacker.Name,
		Defender:   defender.Name,
		Weapon:     weapon.Name,
		Iterations: iterations,
		Seed:       seed,
		Damage:     make([]int, iterations),
	}
	kills := make([]int, workers)
	tallies := make([]game.AttackStatistics, workers)

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := block(iterations, workers, w)
		eg.Go(func() error {
			src := engine.NewStream(seed, uint64(w))
			pending := 0
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out, err := resolver.Resolve(src, attacker, weapon, defender, mods)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				res.Damage[i] = out.Damage
				if out.Kills > 0 {
					kills[w]++
				}
				tallies[w] = tallies[w].Add(out.Stats)
				if pending++; pending >= every {
					progress.add(pending)
					pending = 0
				}
			}
			progress.add(pending)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for w := range workers {
		res.Kills += kills[w]
		res.Stats = res.Stats.Add(tallies[w])
	}
	logger.Debug("simulation finished",
		zap.String("attacker", res.Attacker),
		zap.String("weapon", res.Weapon),
		zap.String("defender", res.Defender),
		zap.Int("iterations", iterations),
		zap.Int("workers", workers),
		zap.Uint64("seed", seed),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// block returns the half-open trial range of worker w.
func block(n, workers, w int) (int, int) {
	size, rem := n/workers, n%workers
	lo := w*size + min(w, rem)
	hi := lo + size
	if w < rem {
		hi++
	}
	return lo, hi
}

type progress struct {
	mu    sync.Mutex
	fn    func(done, total int)
	done  int
	total int
}

func newProgress(fn func(done, total int), total int) *progress {
	return &progress{fn: fn, total: total}
}

func (p *progress) add(n int) {
	if p.fn == nil || n == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	p.fn(p.done, p.total)
}
