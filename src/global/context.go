package global

import (
	"context"

	"github.com/seventv/GifBuilder/src/configure"
)

type Context interface {
	context.Context
	Config() *configure.Config
}

type GlobalContext struct {
	context.Context
	Cfg *configure.Config
}

func New(ctx context.Context, config *configure.Config) Context {
	return &GlobalContext{
		Context: ctx,
		Cfg:     config,
	}
}

func (g *GlobalContext) Config() *configure.Config {
	return g.Cfg
}
