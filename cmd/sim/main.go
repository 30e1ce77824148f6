// Command sim runs a Monte Carlo attack simulation from the command line
// and prints the summary as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/pefman/w40k-sim/internal/api"
	"github.com/pefman/w40k-sim/internal/engine"
	"github.com/pefman/w40k-sim/internal/game"
	"github.com/pefman/w40k-sim/internal/logging"
	"github.com/pefman/w40k-sim/internal/models"
	"github.com/pefman/w40k-sim/internal/sim"
)

type options struct {
	roster     string
	matchup    models.Matchup
	iterations int
	seed       uint64
	workers    int
	remote     string
	histogram  bool
	explain    bool
	logLevel   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	demo := models.DemoMatchup()

	var o options
	fs.StringVar(&o.roster, "roster", "", "YAML roster file (demo units when empty)")
	fs.StringVar(&o.matchup.Attacker, "attacker", demo.Attacker, "attacking unit name")
	fs.StringVar(&o.matchup.Weapon, "weapon", "", "attacker weapon name (first weapon when empty)")
	fs.StringVar(&o.matchup.Defender, "defender", demo.Defender, "defending unit name")
	fs.IntVar(&o.iterations, "iterations", sim.DefaultIterations, "number of simulations")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed (0 picks one)")
	fs.IntVar(&o.workers, "workers", 0, "parallel workers (0 uses GOMAXPROCS)")
	fs.IntVar(&o.matchup.Mods.Hit, "hit-mod", 0, "hit roll modifier")
	fs.IntVar(&o.matchup.Mods.Wound, "wound-mod", 0, "wound roll modifier")
	fs.IntVar(&o.matchup.Mods.AP, "ap-mod", 0, "AP modifier")
	fs.IntVar(&o.matchup.Mods.Damage, "damage-mod", 0, "damage modifier")
	fs.IntVar(&o.matchup.Mods.CritHit, "crit-hit", 6, "critical hit threshold")
	fs.IntVar(&o.matchup.Mods.CritWound, "crit-wound", 6, "critical wound threshold")
	fs.StringVar(&o.remote, "remote", "", "run on an API server at this base URL")
	fs.BoolVar(&o.histogram, "histogram", false, "include the damage histogram")
	fs.BoolVar(&o.explain, "explain", false, "print a roll-by-roll log of one trial instead")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "sim:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	log, err := logging.New(o.logLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	roster := models.DemoRoster()
	if o.roster == "" && o.matchup.Weapon == "" {
		o.matchup.Weapon = models.DemoMatchup().Weapon
	}
	if o.roster != "" {
		if roster, err = models.LoadRoster(o.roster); err != nil {
			return err
		}
		log.Debug("roster loaded", zap.String("path", o.roster), zap.Int("units", len(roster.Units)))
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if o.remote != "" {
		return runRemote(ctx, o, roster, stdout, enc)
	}

	attacker, weapon, defender, err := roster.Resolve(o.matchup)
	if err != nil {
		return err
	}
	mods := o.matchup.Mods.Modifiers()

	if o.explain {
		seed := o.seed
		if seed == 0 {
			if seed, err = engine.NewSeed(); err != nil {
				return err
			}
		}
		_, logs, err := game.NewResolver(nil).Explain(engine.NewRNG(seed), attacker, weapon, defender, mods)
		if err != nil {
			return err
		}
		for _, l := range logs {
			fmt.Fprintln(stdout, l)
		}
		return nil
	}

	runner := &sim.Runner{Workers: o.workers, Seed: o.seed, Logger: log}
	res, err := runner.Run(ctx, attacker, weapon, defender, mods, o.iterations)
	if err != nil {
		return err
	}
	return enc.Encode(res.Summary(o.histogram))
}

// runRemote sends the matchup to a running API server. A local roster file
// is sent inline so the server does not need it.
func runRemote(ctx context.Context, o options, roster *models.Roster, stdout io.Writer, enc *json.Encoder) error {
	c := api.NewClient(o.remote)
	req := api.RunRequest{
		Attacker:   o.matchup.Attacker,
		Weapon:     o.matchup.Weapon,
		Defender:   o.matchup.Defender,
		Modifiers:  o.matchup.Mods,
		Iterations: o.iterations,
		Seed:       o.seed,
		Histogram:  o.histogram,
	}
	if o.roster != "" {
		req.Units = roster.Units
	}
	if o.explain {
		out, err := c.Shoot(ctx, req)
		if err != nil {
			return err
		}
		for _, l := range out.Logs {
			fmt.Fprintln(stdout, l)
		}
		return nil
	}
	resp, err := c.Run(ctx, req)
	if err != nil {
		return err
	}
	return enc.Encode(resp)
}
