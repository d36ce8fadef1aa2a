package hub

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/logging"
	"github.com/prasenjit/swagger-hub/internal/models"
	"github.com/prasenjit/swagger-hub/internal/option"
)

// ErrNoTransport is returned when a provider is assembled without a transport.
var ErrNoTransport = errors.New("transport must be specified")

// LoggerFactory hands out loggers by category.
type LoggerFactory interface {
	Logger(category string) *slog.Logger
}

// NoLogging is the LoggerFactory used when logging is disabled.
type NoLogging struct{}

// Logger implements LoggerFactory.
func (NoLogging) Logger(string) *slog.Logger {
	return logging.Discard()
}

// SlogFactory derives category loggers from a base slog.Logger.
type SlogFactory struct {
	Base *slog.Logger
}

// Logger implements LoggerFactory.
func (f SlogFactory) Logger(category string) *slog.Logger {
	if f.Base == nil {
		return logging.Discard()
	}
	return f.Base.With("category", category)
}

// Dependencies are the collaborators of an assembled provider.
type Dependencies struct {
	Transport http.RoundTripper
	Loggers   LoggerFactory // nil disables logging
	Options   []Option
}

// New assembles a provider from an already resolved hub option.
func New(deps Dependencies, hubOption models.SwaggerHubOption) (*Provider, error) {
	if deps.Transport == nil {
		return nil, ErrNoTransport
	}

	loggers := deps.Loggers
	if loggers == nil {
		loggers = NoLogging{}
	}

	return Create(deps.Transport, hubOption, loggers, deps.Options...), nil
}

// NewFromConfig resolves the hub option from sectionName under root, then
// assembles the provider. Configuration errors are returned unchanged.
func NewFromConfig(deps Dependencies, root config.Section, sectionName string) (*Provider, error) {
	hubOption, err := option.HubOption(root, sectionName)
	if err != nil {
		return nil, err
	}
	return New(deps, hubOption)
}
