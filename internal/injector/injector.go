//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/physim/internal/config"
	"github.com/zeusync/physim/internal/core/events/bus"
)

var coreSet = wire.NewSet(
	ProvideLogger,
	bus.New,
	ProvideScene,
	ProvideEngine,
	wire.Struct(new(App), "*"),
)

func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(coreSet)
	return nil, nil, nil
}

func InitializeStreamApp(cfg *config.Config) (*StreamApp, func(), error) {
	wire.Build(coreSet, ProvideServer, wire.Struct(new(StreamApp), "*"))
	return nil, nil, nil
}

func InitializeViewerApp(cfg *config.Config) (*ViewerApp, func(), error) {
	wire.Build(coreSet, ProvideViewer, wire.Struct(new(ViewerApp), "*"))
	return nil, nil, nil
}
