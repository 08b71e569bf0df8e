// @lixen: #focus{sys[engine,loop]}
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/sticks/config"
	"github.com/lixenwraith/sticks/core"
	"github.com/lixenwraith/sticks/render"
	"github.com/lixenwraith/sticks/status"
	"github.com/lixenwraith/sticks/terminal"
)

// ErrRunning is returned by Run on a game that was already started
var ErrRunning = errors.New("engine: game already started")

// Application supplies the top-level hooks, called once per tick before or after the objects
type Application interface {
	Start(g *Game)
	Update(g *Game)
	LateUpdate(g *Game)
	FixedUpdate(g *Game)
	Render(g *Game)
}

// NopApplication implements every hook as a no-op; embed it to override a subset
type NopApplication struct{}

func (NopApplication) Start(*Game)       {}
func (NopApplication) Update(*Game)      {}
func (NopApplication) LateUpdate(*Game)  {}
func (NopApplication) FixedUpdate(*Game) {}
func (NopApplication) Render(*Game)      {}

// Display is the part of the terminal surface the game controls
type Display interface {
	Close(verbose bool) error
	Pause() error
	Resume() error
}

// KeySource delivers at most one key per poll, terminal.NoKey on timeout
type KeySource interface {
	Poll(timeout time.Duration) (int, error)
}

// Deps are the collaborators of a Game; any may be nil
type Deps struct {
	Display Display
	Input   KeySource
	Screen  *render.Buffer
	App     Application
	Clock   TimeProvider
	Logger  *zap.Logger
}

// Game runs the variable and fixed loops over a registry of objects
// Tick bodies of both loops are serialized: hooks never run concurrently
type Game struct {
	cfg      config.Config
	display  Display
	input    KeySource
	screen   *render.Buffer
	app      Application
	clock    TimeProvider
	log      *zap.Logger
	registry *Registry

	tickMu       sync.Mutex
	lastVariable time.Time
	lastFixed    time.Time

	// Unix nanos, read by hooks without tickMu
	startTime atomic.Int64

	key        atomic.Int64
	delta      atomic.Int64
	fixedDelta atomic.Int64
	frames     atomic.Uint64
	clearStale atomic.Bool
	fill       atomic.Int32

	started   atomic.Bool
	running   atomic.Bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	closeErr  error

	// Cached metric pointers
	stats        *status.Registry
	statFixed    *atomic.Int64
	statOverruns *atomic.Int64
	statObjects  *atomic.Int64
	statFPS      *status.Float
	statCells    *atomic.Int64
	statGroups   *atomic.Int64
	statBytes    *atomic.Int64

	debugMu    sync.Mutex
	debug      *DebugLog
	loggerOnce sync.Once
	overlay    *zap.Logger
}

// New creates a stopped game
func New(cfg config.Config, deps Deps) *Game {
	g := &Game{
		cfg:     cfg,
		display: deps.Display,
		input:   deps.Input,
		screen:  deps.Screen,
		app:     deps.App,
		clock:   deps.Clock,
		log:     deps.Logger,
		stopCh:  make(chan struct{}),
	}
	if g.app == nil {
		g.app = NopApplication{}
	}
	if g.clock == nil {
		g.clock = SystemClock{}
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	g.registry = NewRegistry(g)
	g.stats = status.NewRegistry()
	g.statFixed = g.stats.Int("engine.fixed_ticks")
	g.statOverruns = g.stats.Int("engine.overruns")
	g.statObjects = g.stats.Int("engine.objects")
	g.statFPS = g.stats.Float("engine.fps")
	g.statCells = g.stats.Int("render.cells")
	g.statGroups = g.stats.Int("render.groups")
	g.statBytes = g.stats.Int("render.bytes")
	g.key.Store(terminal.NoKey)
	g.clearStale.Store(cfg.Render.ClearUnpainted)
	g.fill.Store(cfg.Render.Fill())

	now := g.clock.Now()
	g.startTime.Store(now.UnixNano())
	g.lastVariable, g.lastFixed = now, now
	return g
}

// Run starts the application and both loops, and blocks until they stop
// Cancelling ctx or calling Stop is a clean shutdown and returns nil; a hook fault
// stops both loops and is returned. The display is closed before Run returns.
func (g *Game) Run(ctx context.Context) (err error) {
	if !g.started.CompareAndSwap(false, true) {
		return ErrRunning
	}
	g.running.Store(true)

	defer func() {
		g.running.Store(false)
		err = multierr.Append(err, g.Close())
	}()

	if err := g.start(); err != nil {
		g.log.Error("start hook failed", zap.Error(err))
		return err
	}

	g.log.Info("game loop started",
		zap.Duration("variable_interval", g.cfg.Loop.VariableInterval()),
		zap.Duration("fixed_interval", g.cfg.Loop.FixedInterval()))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return g.loop(egCtx, "variable", g.cfg.Loop.VariableInterval(), g.StepVariable)
	})
	eg.Go(func() error {
		return g.loop(egCtx, "fixed", g.cfg.Loop.FixedInterval(), g.StepFixed)
	})

	if err := eg.Wait(); err != nil {
		g.log.Error("game loop fault", zap.Error(err))
		return err
	}
	g.log.Info("game loop stopped", zap.Uint64("frames", g.frames.Load()))
	return nil
}

// start resets timing and invokes the application start hook
func (g *Game) start() (err error) {
	g.tickMu.Lock()
	defer g.tickMu.Unlock()
	defer core.Recover(&err)

	now := g.clock.Now()
	g.startTime.Store(now.UnixNano())
	g.lastVariable, g.lastFixed = now, now
	g.app.Start(g)
	return nil
}

// loop runs step at interval until the running flag clears, ctx ends or step fails
func (g *Game) loop(ctx context.Context, name string, interval time.Duration, step func() error) error {
	t := newTicker(interval, time.Now)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for g.running.Load() {
		begin := time.Now()
		if err := step(); err != nil {
			g.running.Store(false)
			return fmt.Errorf("%s loop: %w", name, err)
		}
		if took := time.Since(begin); took > interval*2 {
			g.statOverruns.Add(1)
			g.log.Debug("tick overran", zap.String("loop", name), zap.Duration("took", took))
		}

		timer.Reset(t.advance())
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil
		case <-g.stopCh:
			return nil
		}
	}
	return nil
}

// StepVariable runs one variable tick: input, update, late update, render, refresh
// The key poll happens before the tick lock so a blocking poll does not stall the fixed loop
func (g *Game) StepVariable() (err error) {
	defer core.Recover(&err)

	key := terminal.NoKey
	if g.input != nil {
		k, perr := g.input.Poll(g.cfg.Loop.PollTimeout())
		if perr != nil {
			return fmt.Errorf("input: %w", perr)
		}
		key = k
	}

	g.tickMu.Lock()
	defer g.tickMu.Unlock()

	now := g.clock.Now()
	delta := nonNegative(now.Sub(g.lastVariable))
	g.delta.Store(int64(delta))
	g.lastVariable = now
	if delta > 0 {
		g.statFPS.Smooth(1/delta.Seconds(), 0.1)
	}

	g.key.Store(int64(key))

	g.app.Update(g)
	snap := g.registry.Snapshot()
	snap.Each(func(o Object) { o.Update() })
	snap.Each(func(o Object) { o.LateUpdate() })
	g.app.LateUpdate(g)

	g.registry.Snapshot().Each(func(o Object) { o.Render() })
	g.app.Render(g)

	g.frames.Add(1)
	g.statObjects.Store(int64(g.registry.Len()))
	if g.cfg.Render.AutoRefresh && g.screen != nil {
		if rerr := g.screen.Refresh(g.clearStale.Load(), g.Fill()); rerr != nil {
			return rerr
		}
		st := g.screen.Stats()
		g.statCells.Store(int64(st.Changed))
		g.statGroups.Store(int64(st.Groups))
		g.statBytes.Store(int64(st.Bytes))
	}
	return nil
}

// StepFixed runs one fixed tick
func (g *Game) StepFixed() (err error) {
	g.tickMu.Lock()
	defer g.tickMu.Unlock()
	defer core.Recover(&err)

	now := g.clock.Now()
	g.fixedDelta.Store(int64(nonNegative(now.Sub(g.lastFixed))))
	g.lastFixed = now

	g.app.FixedUpdate(g)
	g.registry.Snapshot().Each(func(o Object) { o.FixedUpdate() })
	g.statFixed.Add(1)
	return nil
}

// Stop requests shutdown; loops exit after their current tick
func (g *Game) Stop() {
	g.running.Store(false)
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})
}

// Running reports whether the loops are active
func (g *Game) Running() bool {
	return g.running.Load()
}

// Close restores the display once; Run calls it on every exit path
func (g *Game) Close() error {
	g.closeOnce.Do(func() {
		if g.display != nil {
			g.closeErr = g.display.Close(g.cfg.Terminal.VerboseClose)
		}
	})
	return g.closeErr
}

// Suspend hands the terminal away while fn runs and takes it back afterwards
func (g *Game) Suspend(fn func() error) error {
	if g.display == nil {
		return fn()
	}
	if err := g.display.Pause(); err != nil {
		return fmt.Errorf("pause display: %w", err)
	}
	err := fn()
	if rerr := g.display.Resume(); rerr != nil {
		err = multierr.Append(err, fmt.Errorf("resume display: %w", rerr))
	}
	return err
}

// Key returns the key read by the last variable tick, terminal.NoKey if none
func (g *Game) Key() int {
	return int(g.key.Load())
}

// KeyPressed reports whether the last key read equals k
func (g *Game) KeyPressed(k int) bool {
	return g.Key() == k
}

// TriggerKey replaces the last key as if it had been read
func (g *Game) TriggerKey(k int) {
	g.key.Store(int64(k))
}

// DeltaTime is the wall time between the last two variable ticks
func (g *Game) DeltaTime() time.Duration {
	return time.Duration(g.delta.Load())
}

// FixedDeltaTime is the wall time between the last two fixed ticks
func (g *Game) FixedDeltaTime() time.Duration {
	return time.Duration(g.fixedDelta.Load())
}

// Elapsed is the time since the game started
func (g *Game) Elapsed() time.Duration {
	start := time.Unix(0, g.startTime.Load())
	return nonNegative(g.clock.Now().Sub(start))
}

// Frames counts completed variable ticks
func (g *Game) Frames() uint64 {
	return g.frames.Load()
}

// ClearUnpainted reports whether the tick refresh erases cells not repainted this frame
func (g *Game) ClearUnpainted() bool {
	return g.clearStale.Load()
}

// SetClearUnpainted changes the refresh policy from the next tick on
func (g *Game) SetClearUnpainted(v bool) {
	g.clearStale.Store(v)
}

// Fill is the rune written over stale cells
func (g *Game) Fill() rune {
	return g.fill.Load()
}

// SetFill changes the stale-cell rune from the next refresh on; 0 restores space
func (g *Game) SetFill(r rune) {
	if r == 0 {
		r = ' '
	}
	g.fill.Store(r)
}

// Status returns the loop and render metrics
func (g *Game) Status() *status.Registry {
	return g.stats
}

// Config returns the configuration the game was built with
func (g *Game) Config() config.Config {
	return g.cfg
}

// Screen returns the cell buffer, nil when the game has no display
func (g *Game) Screen() *render.Buffer {
	return g.screen
}

// Registry returns the object registry
func (g *Game) Registry() *Registry {
	return g.registry
}

// Instantiate creates an object owned by this game
func (g *Game) Instantiate(factory Factory) Object {
	return g.registry.Create(factory)
}

// Destroy removes an object by identity
func (g *Game) Destroy(id ID) bool {
	return g.registry.Destroy(id)
}

// Find looks up an object by identity
func (g *Game) Find(id ID) (Object, bool) {
	return g.registry.Get(id)
}

// Log appends a line to the diagnostic overlay, creating it on first use
func (g *Game) Log(msg string) {
	g.debugMu.Lock()
	if g.debug == nil {
		g.debug = Spawn(g.registry, func() *DebugLog { return NewDebugLog(g.cfg.Debug) })
	} else if _, ok := g.registry.Get(g.debug.ID()); !ok {
		// Destroyed by someone else, start over
		g.debug = Spawn(g.registry, func() *DebugLog { return NewDebugLog(g.cfg.Debug) })
	}
	d := g.debug
	g.debugMu.Unlock()

	d.Append(msg)
}

// Logger returns the process logger teed into the diagnostic overlay
func (g *Game) Logger() *zap.Logger {
	g.loggerOnce.Do(func() {
		overlay := newOverlayCore(zapcore.InfoLevel, g.Log)
		g.overlay = g.log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, overlay)
		}))
	})
	return g.overlay
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
