// Package document loads the bytes of an uploaded document and reports its
// page geometry. Rasterization is left to the host; the template engine only
// needs the page count and per-page size.
package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/canvas"
)

// Info describes a loaded document.
type Info struct {
	ContentType string            `json:"contentType"`
	Size        int               `json:"size"`
	PageCount   int               `json:"pageCount"`
	Pages       []canvas.PageSize `json:"pages"`
}

type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

type Inspector interface {
	Inspect(data []byte) (*Info, error)
}

// LoadError is terminal for one attempt: the host shows it and offers retry.
// It is never retried automatically.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load document %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type Loader struct {
	fetcher   Fetcher
	inspector Inspector
	logger    *zap.Logger
}

func NewLoader(fetcher Fetcher, inspector Inspector, logger *zap.Logger) *Loader {
	return &Loader{fetcher: fetcher, inspector: inspector, logger: logger}
}

// Load fetches and inspects source. Any failure comes back as *LoadError.
func (l *Loader) Load(ctx context.Context, source string) (*Info, error) {
	data, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		l.logger.Warn("document fetch failed", zap.String("source", source), zap.Error(err))
		return nil, &LoadError{Source: source, Err: err}
	}
	if len(data) == 0 {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("document is empty")}
	}
	info, err := l.inspector.Inspect(data)
	if err != nil {
		l.logger.Warn("document parse failed", zap.String("source", source), zap.Error(err))
		return nil, &LoadError{Source: source, Err: err}
	}
	if info.PageCount < 1 {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("document has no pages")}
	}
	l.logger.Info("document loaded",
		zap.String("source", source),
		zap.String("content_type", info.ContentType),
		zap.Int("pages", info.PageCount),
	)
	return info, nil
}

// Open returns a handle that tracks the load of source through its
// loading -> ready | error states.
func (l *Loader) Open(source string) *Handle {
	return &Handle{loader: l, source: source}
}
