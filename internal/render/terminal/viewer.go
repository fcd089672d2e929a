// Package terminal draws engine frames on a tcell screen.
package terminal

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/physim/internal/core/observability/log"
	"github.com/zeusync/physim/internal/core/systems"
	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2.0

const (
	runeCircle = '●'
	runeEdge   = '·'
	runeVertex = '+'
	runeLine   = '*'
)

var (
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleDynamic = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStatic  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	stylePlane   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Config selects the visible part of the world.
type Config struct {
	// Center is the world point shown in the middle of the screen.
	Center physics.Vec2 `mapstructure:"center"`
	// Width is the visible world width in meters.
	Width float64 `mapstructure:"width"`
}

func DefaultConfig() Config {
	return Config{Center: physics.V(0, 10), Width: 30}
}

func (c Config) Validate() error {
	if !(c.Width > 0) || math.IsInf(c.Width, 0) {
		return fmt.Errorf("%w: width %v", ErrInvalidConfig, c.Width)
	}
	if !c.Center.IsFinite() {
		return fmt.Errorf("%w: center %v", ErrInvalidConfig, c.Center)
	}
	return nil
}

var _ systems.Sink[engine.Frame] = (*Viewer)(nil)

// Viewer is a frame sink that redraws the screen on every frame.
type Viewer struct {
	screen tcell.Screen
	cfg    Config
	logger log.Log

	mu      sync.Mutex
	visible int
}

// NewScreen opens the terminal.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScreen, err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScreen, err)
	}
	return screen, nil
}

// New creates a viewer on an initialised screen.
func New(screen tcell.Screen, cfg Config, logger log.Log) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Viewer{
		screen: screen,
		cfg:    cfg,
		logger: logger.With(log.Component("viewer")),
	}, nil
}

func (v *Viewer) Name() string { return "viewer" }

// Visible is the number of shapes drawn in the last frame.
func (v *Viewer) Visible() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *Viewer) Consume(_ context.Context, frame engine.Frame) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = v.draw(frame)
	v.screen.Show()
	return nil
}

// Run handles input until ctx is cancelled or the user quits with Esc, q or
// Ctrl-C. It does not restore the terminal; see Close.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer close(quit)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev) {
					v.logger.Info("viewer closed by user")
					return nil
				}
			case *tcell.EventResize:
				v.mu.Lock()
				v.screen.Sync()
				v.mu.Unlock()
			}
		}
	}
}

// Close restores the terminal.
func (v *Viewer) Close() {
	v.screen.Fini()
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
