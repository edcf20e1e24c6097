package engine

import (
	"github.com/spaghettifunk/ember/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
	// Headless skips window and input device creation. Ticking, scripting
	// and the fixed services all still run; used by tools and tests.
	Headless bool
	// FixedTimestepRate overrides the simulation step length in seconds.
	// Zero means the default of 1/90.
	FixedTimestepRate float64
}
