// Package canvas converts between canonical field geometry (100% zoom) and the
// visual pixel geometry of a zoomed, multi-page document view.
package canvas

import (
	"math"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

const (
	MinScale     = 0.5
	MaxScale     = 2.0
	ScaleStep    = 0.1
	DefaultScale = 1.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PageSize is the canonical size of one page as reported by the document loader.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Model holds the zoom scale and page geometry of one document view. Field
// geometry is never stored scaled; the model only projects it.
type Model struct {
	scale float64
	pages []PageSize
}

func New(pages []PageSize) *Model {
	m := &Model{scale: DefaultScale}
	m.SetPages(pages)
	return m
}

func (m *Model) SetPages(pages []PageSize) {
	m.pages = append([]PageSize(nil), pages...)
}

func (m *Model) PageCount() int { return len(m.pages) }

// ValidPage reports whether page is a 1-based index into the bound document.
func (m *Model) ValidPage(page int) bool {
	return page >= 1 && page <= len(m.pages)
}

func (m *Model) PageSize(page int) (PageSize, bool) {
	if !m.ValidPage(page) {
		return PageSize{}, false
	}
	return m.pages[page-1], true
}

func (m *Model) VisualPageSize(page int) (PageSize, bool) {
	ps, ok := m.PageSize(page)
	if !ok {
		return PageSize{}, false
	}
	return PageSize{Width: ps.Width * m.scale, Height: ps.Height * m.scale}, true
}

func (m *Model) Scale() float64 { return m.scale }

// SetScale clamps s into [MinScale, MaxScale], snaps it to the step grid and
// returns the applied value.
func (m *Model) SetScale(s float64) float64 {
	m.scale = normalizeScale(s)
	return m.scale
}

func (m *Model) ZoomIn() float64  { return m.SetScale(m.scale + ScaleStep) }
func (m *Model) ZoomOut() float64 { return m.SetScale(m.scale - ScaleStep) }

func (m *Model) ToVisual(p Point) Point {
	return Point{X: p.X * m.scale, Y: p.Y * m.scale}
}

// ToCanonical maps a pointer position to canonical page coordinates given the
// visual origin of the page container.
func (m *Model) ToCanonical(visual, origin Point) Point {
	return Point{
		X: (visual.X - origin.X) / m.scale,
		Y: (visual.Y - origin.Y) / m.scale,
	}
}

// CanonicalDelta converts a pointer displacement in visual pixels into
// canonical units.
func (m *Model) CanonicalDelta(dx, dy float64) (float64, float64) {
	return dx / m.scale, dy / m.scale
}

func (m *Model) VisualRect(p models.Position) models.Position {
	return models.Position{
		X:      p.X * m.scale,
		Y:      p.Y * m.scale,
		Width:  p.Width * m.scale,
		Height: p.Height * m.scale,
	}
}

func normalizeScale(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultScale
	}
	s = math.Round(s/ScaleStep) * ScaleStep
	s = math.Round(s*10) / 10
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
