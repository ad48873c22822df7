package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/canvas"
)

var disableConfigDir sync.Once

// PDFInspector reads page geometry from PDF bytes.
type PDFInspector struct{}

func (PDFInspector) Inspect(data []byte) (*Info, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	dims, err := api.PageDims(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("read pdf pages: %w", err)
	}
	pages := make([]canvas.PageSize, len(dims))
	for i, d := range dims {
		pages[i] = canvas.PageSize{Width: d.Width, Height: d.Height}
	}
	return &Info{ContentType: "application/pdf", Size: len(data), PageCount: len(pages), Pages: pages}, nil
}

// ImageInspector treats a raster image as a single page of its pixel size.
type ImageInspector struct{}

func (ImageInspector) Inspect(data []byte) (*Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	return &Info{
		ContentType: "image/" + format,
		Size:        len(data),
		PageCount:   1,
		Pages:       []canvas.PageSize{{Width: float64(cfg.Width), Height: float64(cfg.Height)}},
	}, nil
}

// ContentInspector sniffs the content type and delegates to the matching
// inspector.
type ContentInspector struct {
	PDF   Inspector
	Image Inspector
}

func NewContentInspector() ContentInspector {
	return ContentInspector{PDF: PDFInspector{}, Image: ImageInspector{}}
}

func (c ContentInspector) Inspect(data []byte) (*Info, error) {
	ct := http.DetectContentType(data)
	switch {
	case ct == "application/pdf":
		return c.PDF.Inspect(data)
	case strings.HasPrefix(ct, "image/"):
		return c.Image.Inspect(data)
	}
	return nil, fmt.Errorf("unsupported document type %s", ct)
}
