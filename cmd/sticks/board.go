package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/lixenwraith/sticks/engine"
	"github.com/lixenwraith/sticks/render"
	"github.com/lixenwraith/sticks/terminal"
)

var fingerSymbols = []string{"0", "1", "2", "3", "4"}

// hand is one player's pair of hands, one finger each at the start
type hand struct {
	name        string
	left, right int
}

func newHand(index int, name string) hand {
	if name == "" {
		name = fmt.Sprintf("Player #%d", index)
	}
	return hand{name: name, left: 1, right: 1}
}

func (h hand) String() string {
	return "[" + fingerSymbols[h.left] + "] [" + fingerSymbols[h.right] + "]"
}

// parsePlayers splits a comma list; empty input means two anonymous players
func parsePlayers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{"", ""}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// board draws the players around the screen center and owns the demo sprite
type board struct {
	engine.NopApplication

	hands  []hand
	sprite *sprite

	// readingFill means the next key becomes the stale-cell fill rune
	readingFill bool
	noise       bool
	rng         *rand.Rand
}

// noiseDensity is the share of cells repainted with a random digit per frame
const noiseDensity = 0.0125

func newBoard(names []string) *board {
	b := &board{
		hands: make([]hand, len(names)),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for i, name := range names {
		b.hands[i] = newHand(i, name)
	}
	return b
}

func (b *board) Start(g *engine.Game) {
	b.sprite = engine.Spawn(g.Registry(), newSprite)
	g.Logger().Info("board ready", zap.Int("players", len(b.hands)))
}

func (b *board) Update(g *engine.Game) {
	k := g.Key()
	if b.readingFill && k != terminal.NoKey {
		b.readingFill = false
		g.SetFill(rune(k))
		g.Logger().Info("fill changed", zap.String("fill", string(rune(k))))
		return
	}

	switch k {
	case terminal.NoKey:
	case ':':
		b.readingFill = true
	case 'r':
		b.noise = !b.noise
	case 'q':
		g.Logger().Info("quit requested")
		g.Stop()
	case 'm':
		g.SetClearUnpainted(!g.ClearUnpainted())
		g.Logger().Info("clear mode", zap.Bool("clear_unpainted", g.ClearUnpainted()))
	case terminal.KeyRedraw:
		g.Logger().Debug("redraw")
	default:
		g.Logger().Debug("key", zap.Int("code", k))
	}
}

func (b *board) Render(g *engine.Game) {
	screen := g.Screen()
	if screen == nil {
		return
	}
	width, height := screen.Size()
	if b.noise {
		b.drawNoise(screen, width, height)
	}
	b.drawPlayers(screen, width, height)

	help := "wasd move  m clear  r noise  :<c> fill  ` log  q quit"
	fps := g.Status().Float("engine.fps").Load()
	status := fmt.Sprintf("frame %d  key %d  dt %v  fps %.0f", g.Frames(), g.Key(), g.DeltaTime().Round(time.Millisecond), fps)
	screen.Write(height-2, 0, status, render.Gray, nil)
	screen.Write(height-1, 0, help, render.Gray, nil)
}

// drawPlayers lays names out on a ring with radius min(w/2, h)/2; y is halved
// because cells are about twice as tall as they are wide
func (b *board) drawPlayers(screen *render.Buffer, width, height int) {
	if len(b.hands) == 0 {
		return
	}
	radius := int(math.Min(float64(width)/2, float64(height)) / 2)
	for i, h := range b.hands {
		theta := float64(i) * 2 * math.Pi / float64(len(b.hands))
		x := int(float64(width)/2 + float64(radius)*math.Sin(theta))
		y := int(float64(height)/2 - float64(radius)*math.Cos(theta)/2)
		screen.Write(y, x-len([]rune(h.name))/2, h.name, render.White, nil)
		screen.Write(y+1, x-3, h.String(), render.Yellow, nil)
	}
}

// drawNoise scatters random digits over the screen
func (b *board) drawNoise(screen *render.Buffer, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	n := int(float64(width*height) * noiseDensity)
	for range n {
		digit := string(rune('0' + b.rng.IntN(10)))
		screen.Write(b.rng.IntN(height), b.rng.IntN(width), digit, render.Default, nil)
	}
}

const (
	spriteSpeed      = 12.0 // cells per second
	spriteBlinkEvery = 30   // frames per glyph
	spriteHueRate    = 90.0 // degrees per second
)

// sprite is a movable glyph: input sets velocity, the fixed loop integrates it
type sprite struct {
	engine.Base

	x, y   float64
	vx, vy float64
	frames int
	hue    float64
}

func newSprite() *sprite {
	return &sprite{x: 1, y: 1}
}

func (s *sprite) Update() {
	g := s.Game()
	switch g.Key() {
	case 'w':
		s.vx, s.vy = 0, -spriteSpeed/2
	case 's':
		s.vx, s.vy = 0, spriteSpeed/2
	case 'a':
		s.vx, s.vy = -spriteSpeed, 0
	case 'd':
		s.vx, s.vy = spriteSpeed, 0
	case ' ':
		s.vx, s.vy = 0, 0
	}
}

func (s *sprite) LateUpdate() {
	g := s.Game()
	s.frames++
	s.hue = math.Mod(s.hue+spriteHueRate*g.DeltaTime().Seconds(), 360)
}

func (s *sprite) FixedUpdate() {
	g := s.Game()
	dt := g.FixedDeltaTime().Seconds()
	s.x += s.vx * dt
	s.y += s.vy * dt

	if screen := g.Screen(); screen != nil {
		width, height := screen.Size()
		s.x = clamp(s.x, 0, float64(width-1))
		s.y = clamp(s.y, 0, float64(height-3))
	}
}

func (s *sprite) Render() {
	screen := s.Game().Screen()
	if screen == nil {
		return
	}
	glyph := "o"
	if (s.frames/spriteBlinkEvery)%2 == 1 {
		glyph = "O"
	}
	r, g, b := colorful.Hsv(s.hue, 1, 1).RGB255()
	screen.Write(int(s.y), int(s.x), glyph, render.RGB{R: r, G: g, B: b}, nil)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
