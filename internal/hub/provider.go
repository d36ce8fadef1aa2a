// Package hub aggregates remote OpenAPI documents into one hub document.
//
// A Provider is assembled from a resolved models.SwaggerHubOption, an HTTP
// transport and an optional LoggerFactory. Each call fetches the configured
// documents through the transport; the last good copy of every document is
// kept in a storage.Storage and served when the remote is unavailable.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/sync/errgroup"

	"github.com/prasenjit/swagger-hub/internal/models"
	"github.com/prasenjit/swagger-hub/internal/stats"
	"github.com/prasenjit/swagger-hub/internal/storage"
)

// ErrDocumentNotFound is returned for a document index outside the hub option.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentProvider gives access to the hub's remote documents.
type DocumentProvider interface {
	// Documents fetches every configured document, in configuration order.
	Documents(ctx context.Context) ([]Document, error)
	// Document fetches the document at index.
	Document(ctx context.Context, index int) (Document, error)
	// Aggregate merges every document into a single OpenAPI 3 document.
	Aggregate(ctx context.Context) (*openapi3.T, error)
	// Option returns the option the provider was created with.
	Option() models.SwaggerHubOption
}

// Document is one fetched and parsed remote document.
type Document struct {
	Index     int
	Option    models.SwaggerDocumentOption
	Location  string
	Version   string // version declared by the source, "2.0" for Swagger
	Stale     bool   // served from storage after a failed fetch
	RequestID string
	FetchedAt time.Time
	Spec      *openapi3.T
}

// Provider implements DocumentProvider.
type Provider struct {
	client *http.Client
	option models.SwaggerHubOption
	logger *slog.Logger
	store  storage.Storage
	stats  *stats.Collector

	maxSize int64
}

var _ DocumentProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithStorage sets the snapshot storage. The default is in memory.
func WithStorage(s storage.Storage) Option {
	return func(p *Provider) {
		if s != nil {
			p.store = s
		}
	}
}

// WithStats sets the fetch statistics collector.
func WithStats(c *stats.Collector) Option {
	return func(p *Provider) {
		if c != nil {
			p.stats = c
		}
	}
}

// WithFetchTimeout bounds every request made for a document.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.client.Timeout = d
	}
}

// WithMaxDocumentSize bounds the body read for one document. Larger
// documents fail to fetch instead of being truncated.
func WithMaxDocumentSize(n int64) Option {
	return func(p *Provider) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// Create builds a Provider. It does not contact any remote.
func Create(transport http.RoundTripper, hubOption models.SwaggerHubOption, loggers LoggerFactory, opts ...Option) *Provider {
	if loggers == nil {
		loggers = NoLogging{}
	}

	p := &Provider{
		client: &http.Client{Transport: transport},
		option: hubOption,
		logger: loggers.Logger("swagger-hub"),
		store:  storage.NewMemoryStorage(),
		stats:  stats.NewCollector(),

		maxSize: defaultMaxDocumentSize,
	}

	for _, apply := range opts {
		apply(p)
	}

	return p
}

// Option implements DocumentProvider.
func (p *Provider) Option() models.SwaggerHubOption {
	return p.option
}

// Stats returns the collector that records the provider's fetches.
func (p *Provider) Stats() *stats.Collector {
	return p.stats
}

// Documents implements DocumentProvider. Documents are fetched concurrently;
// the first failure cancels the rest.
func (p *Provider) Documents(ctx context.Context) ([]Document, error) {
	docs := make([]Document, len(p.option.Documents))

	g, gctx := errgroup.WithContext(ctx)
	for i := range p.option.Documents {
		g.Go(func() error {
			doc, err := p.fetch(gctx, i)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Document implements DocumentProvider.
func (p *Provider) Document(ctx context.Context, index int) (Document, error) {
	if index < 0 || index >= len(p.option.Documents) {
		return Document{}, fmt.Errorf("%w: index %d", ErrDocumentNotFound, index)
	}
	return p.fetch(ctx, index)
}

// Aggregate implements DocumentProvider.
func (p *Provider) Aggregate(ctx context.Context) (*openapi3.T, error) {
	docs, err := p.Documents(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := merge(p.option.Option, docs, p.logger)
	if err != nil {
		return nil, err
	}

	if verr := doc.Validate(ctx); verr != nil {
		p.logger.Warn("aggregate document is not valid", "error", verr)
	}
	return doc, nil
}
