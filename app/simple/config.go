package simple

import (
	"github.com/dmitrymomot/hyperkit"
	"github.com/dmitrymomot/hyperkit/core/server"
)

// Config is the demo application configuration. Nested configs read their own
// prefixed variables.
type Config struct {
	Web    hyperkit.Config
	Server server.Config

	AppName  string `env:"APP_NAME" envDefault:"hyperkit-simple"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}
