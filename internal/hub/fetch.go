package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	oasyaml "github.com/oasdiff/yaml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/prasenjit/swagger-hub/internal/models"
)

// defaultMaxDocumentSize caps the body read for a single remote document.
const defaultMaxDocumentSize = 32 << 20

var (
	errUnknownFormat = errors.New("document declares neither an openapi nor a swagger version")
	errTooLarge      = errors.New("document too large")
)

// fetch downloads and parses the document at index. A failed download falls
// back to the stored snapshot of the same location, if any.
func (p *Provider) fetch(ctx context.Context, index int) (Document, error) {
	opt := p.option.Documents[index]
	location := opt.DocumentLocation()
	key := location.String()
	requestID := uuid.NewString()
	logger := p.logger.With("document", index, "location", key, "requestId", requestID)

	start := time.Now()
	content, err := p.download(ctx, key, requestID)
	p.stats.RecordFetch(index, key, time.Since(start), err)

	if err != nil {
		snap, serr := p.store.GetSnapshot(key)
		if serr != nil {
			return Document{}, fmt.Errorf("failed to fetch document %d from %s: %w", index, key, err)
		}

		logger.Warn("fetch failed, serving stored snapshot", "error", err, "fetchedAt", snap.FetchedAt)
		p.stats.RecordStale(index, key)

		spec, perr := p.load(ctx, snap.Content, snap.Version, location, requestID)
		if perr != nil {
			return Document{}, fmt.Errorf("failed to parse stored snapshot of document %d: %w", index, perr)
		}
		return Document{
			Index:     index,
			Option:    opt,
			Location:  key,
			Version:   snap.Version,
			Stale:     true,
			RequestID: snap.RequestID,
			FetchedAt: snap.FetchedAt,
			Spec:      spec,
		}, nil
	}

	version, err := detectVersion(content)
	if err != nil {
		return Document{}, fmt.Errorf("invalid document %d from %s: %w", index, key, err)
	}

	spec, err := p.load(ctx, content, version, location, requestID)
	if err != nil {
		return Document{}, fmt.Errorf("invalid document %d from %s: %w", index, key, err)
	}

	now := time.Now()
	snap := &models.Snapshot{
		Key:       key,
		Index:     index,
		Version:   version,
		Content:   content,
		RequestID: requestID,
		FetchedAt: now,
	}
	if err := p.store.SaveSnapshot(snap); err != nil {
		logger.Warn("failed to store snapshot", "error", err)
	}

	logger.Debug("document fetched", "version", version, "bytes", len(content), "duration", time.Since(start))

	return Document{
		Index:     index,
		Option:    opt,
		Location:  key,
		Version:   version,
		RequestID: requestID,
		FetchedAt: now,
		Spec:      spec,
	}, nil
}

// download performs a GET through the provider's transport
func (p *Provider) download(ctx context.Context, location, requestID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.8")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, p.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > p.maxSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", errTooLarge, p.maxSize)
	}
	return content, nil
}

// load parses content as OpenAPI 3, converting Swagger 2.0 first.
// External references are read through the provider's transport.
func (p *Provider) load(ctx context.Context, content []byte, version string, location *url.URL, requestID string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = true
	loader.ReadFromURIFunc = func(_ *openapi3.Loader, u *url.URL) ([]byte, error) {
		return p.download(ctx, u.String(), requestID)
	}

	if !isSwagger2(version) {
		return loader.LoadFromDataWithPath(content, location)
	}

	var doc2 openapi2.T
	if err := json.Unmarshal(content, &doc2); err != nil {
		if err2 := oasyaml.Unmarshal(content, &doc2); err2 != nil {
			return nil, fmt.Errorf("unmarshal swagger: %v / %v", err, err2)
		}
	}
	return openapi2conv.ToV3WithLoader(&doc2, loader, location)
}

// detectVersion reads the "openapi" or "swagger" field of a JSON or YAML document
func detectVersion(content []byte) (string, error) {
	if gjson.ValidBytes(content) {
		if v := gjson.GetBytes(content, "openapi"); v.Exists() {
			return v.String(), nil
		}
		if v := gjson.GetBytes(content, "swagger"); v.Exists() {
			return v.String(), nil
		}
		return "", errUnknownFormat
	}

	var head struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(content, &head); err != nil {
		return "", fmt.Errorf("document is neither JSON nor YAML: %w", err)
	}

	switch {
	case head.OpenAPI != "":
		return head.OpenAPI, nil
	case head.Swagger != "":
		return head.Swagger, nil
	default:
		return "", errUnknownFormat
	}
}

func isSwagger2(version string) bool {
	return strings.HasPrefix(version, "2")
}
