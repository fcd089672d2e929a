package injector

import (
	"fmt"

	"github.com/zeusync/physim/internal/config"
	"github.com/zeusync/physim/internal/core/events/bus"
	"github.com/zeusync/physim/internal/core/observability/log"
	"github.com/zeusync/physim/internal/core/scene"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/render/terminal"
	"github.com/zeusync/physim/internal/server"
)

// App is the headless simulation: the engine with the configured scene
// loaded, and the bus it publishes collisions on.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Bus    bus.EventBus
	Scene  *scene.Scene
	Engine *engine.Engine
}

// StreamApp serves the simulation over websocket.
type StreamApp struct {
	App    *App
	Server *server.Server
}

// ViewerApp draws the simulation in the terminal.
type ViewerApp struct {
	App    *App
	Viewer *terminal.Viewer
}

func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	logger, err := log.NewWithConfig(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideScene(cfg *config.Config) (*scene.Scene, error) {
	return scene.Load(cfg.Scene)
}

// ProvideEngine builds the engine with the scene overrides applied and the
// scene's bodies added.
func ProvideEngine(cfg *config.Config, sc *scene.Scene, logger *log.Logger, eventBus bus.EventBus) (*engine.Engine, error) {
	bodies, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", sc.Name, err)
	}
	e, err := engine.New(sc.EngineConfig(cfg.Engine),
		engine.WithLogger(logger),
		engine.WithBus(eventBus),
	)
	if err != nil {
		return nil, err
	}
	e.Add(bodies...)

	logger.Info("scene loaded",
		log.String("scene", sc.Name),
		log.Int("bodies", len(bodies)),
		log.Float64("restitution", e.Config().Restitution),
	)
	return e, nil
}

func ProvideServer(cfg *config.Config, logger *log.Logger, eventBus bus.EventBus) (*server.Server, error) {
	return server.New(cfg.Server, logger, eventBus)
}

// ProvideViewer takes over the terminal; the cleanup restores it.
func ProvideViewer(cfg *config.Config, logger *log.Logger) (*terminal.Viewer, func(), error) {
	screen, err := terminal.NewScreen()
	if err != nil {
		return nil, nil, err
	}
	viewer, err := terminal.New(screen, cfg.Viewer, logger)
	if err != nil {
		screen.Fini()
		return nil, nil, err
	}
	return viewer, viewer.Close, nil
}
