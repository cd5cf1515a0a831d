package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/milk9111/ragdoll/ecs/component"
	"github.com/milk9111/ragdoll/prefabs"
)

func main() {
	scenarioName := flag.String("scenario", "explosion.yaml", "scenario file path, or a name in prefabs/scenarios")
	tuningPath := flag.String("tuning", "", "tuning file path (default: prefabs/"+prefabs.TuningFile+")")
	dt := flag.Float64("dt", 1.0/60, "fixed step in seconds")
	workers := flag.Int("workers", 1, "controllers thinking concurrently")
	verbose := flag.Bool("v", false, "log state transitions and sandbox behaviors")
	watch := flag.Bool("watch", false, "run in real time and restart on prefab changes")
	flag.Parse()

	if *dt <= 0 {
		log.Fatalf("dt must be positive, got %v", *dt)
	}

	logger := log.New(os.Stderr, "", log.Lmicroseconds)
	r := &runner{
		scenario: *scenarioName,
		tuning:   *tuningPath,
		dt:       *dt,
		opts:     simOptions{workers: *workers, verbose: *verbose, logger: logger},
		logger:   logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if *watch {
		err = r.watch(ctx)
	} else {
		err = r.runOnce()
	}
	if err != nil {
		log.Fatal(err)
	}
}

type runner struct {
	scenario string
	tuning   string
	dt       float64
	opts     simOptions
	logger   *log.Logger
}

func (r *runner) loadTuning() (component.Tuning, error) {
	if r.tuning != "" {
		return prefabs.LoadTuningFile(r.tuning)
	}
	return prefabs.LoadTuning(prefabs.TuningFile)
}

func (r *runner) build() (*simulation, error) {
	tuning, err := r.loadTuning()
	if err != nil {
		return nil, err
	}
	spec, err := prefabs.LoadScenario(r.scenario)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("scenario %s: %d actors, %d stimuli", spec.Name, len(spec.Actors), len(spec.Stimuli))
	return newSimulation(spec, tuning, r.opts)
}

func (r *runner) runOnce() error {
	sim, err := r.build()
	if err != nil {
		return err
	}
	defer sim.Close()
	runToEnd(sim, r.dt)
	r.logger.Printf("scenario %s finished at t=%.2f", sim.spec.Name, sim.elapsed)
	return nil
}

// maxSteps bounds scenarios without a duration.
const maxSteps = 60 * 60 * 10

func runToEnd(sim *simulation, dt float64) {
	for i := 0; i < maxSteps && !sim.Done(); i++ {
		sim.Step(dt)
	}
}

func (r *runner) watch(ctx context.Context) error {
	w, err := prefabs.NewWatcher(r.watchDirs()...)
	if err != nil {
		return err
	}
	defer w.Close()

	sim, err := r.build()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(r.dt * float64(time.Second)))
	defer ticker.Stop()

	l := &watchLoop{r: r, sim: sim, events: w.Events, errs: w.Errors, ticks: ticker.C}
	defer func() { l.sim.Close() }()
	for !l.step(ctx) {
	}
	return nil
}

// watchLoop runs a simulation in real time and reacts to prefab changes.
type watchLoop struct {
	r        *runner
	sim      *simulation
	events   <-chan prefabs.Change
	errs     <-chan error
	ticks    <-chan time.Time
	finished bool
}

// step handles one tick, change or error and reports whether the loop is
// over. A closed error channel is dropped from the select.
func (l *watchLoop) step(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case err, ok := <-l.errs:
		if !ok {
			l.errs = nil
			return false
		}
		l.r.logger.Printf("watch: %v", err)
	case change, ok := <-l.events:
		if !ok {
			return true
		}
		l.onChange(change)
	case <-l.ticks:
		l.tick()
	}
	return false
}

func (l *watchLoop) onChange(change prefabs.Change) {
	r := l.r
	r.logger.Printf("watch: %s changed (%s)", change.Path, change.Kind)
	if change.Kind == prefabs.ChangeScenario || l.finished {
		next, err := r.build()
		if err != nil {
			r.logger.Printf("watch: %v", err)
			return
		}
		l.sim.Close()
		l.sim, l.finished = next, false
		return
	}
	if err := r.reload(l.sim, change.Kind); err != nil {
		r.logger.Printf("watch: %v", err)
	}
}

func (l *watchLoop) tick() {
	if l.finished {
		return
	}
	l.sim.Step(l.r.dt)
	if l.sim.Done() {
		l.finished = true
		l.r.logger.Printf("scenario %s finished at t=%.2f, waiting for changes", l.sim.spec.Name, l.sim.elapsed)
	}
}

// reload applies a tuning or script change to the running simulation.
func (r *runner) reload(sim *simulation, kind prefabs.ChangeKind) error {
	switch kind {
	case prefabs.ChangeTuning:
		tuning, err := r.loadTuning()
		if err != nil {
			return err
		}
		return sim.applyTuning(tuning)
	case prefabs.ChangeScript:
		return sim.reloadTakeover()
	}
	return nil
}

func (r *runner) watchDirs() []string {
	candidates := []string{
		prefabs.Dir,
		filepath.Join(prefabs.Dir, "scripts"),
		filepath.Join(prefabs.Dir, "scenarios"),
	}
	if r.tuning != "" {
		candidates = append(candidates, filepath.Dir(r.tuning))
	}
	if _, err := os.Stat(r.scenario); err == nil {
		candidates = append(candidates, filepath.Dir(r.scenario))
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range candidates {
		clean := filepath.Clean(dir)
		if seen[clean] {
			continue
		}
		if info, err := os.Stat(clean); err != nil || !info.IsDir() {
			continue
		}
		seen[clean] = true
		dirs = append(dirs, clean)
	}
	return dirs
}
