package editor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

// Detection is one field proposed by an automatic detector, in canonical
// coordinates.
type Detection struct {
	Type       models.FieldType `json:"type"`
	Page       int              `json:"page"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Label      string           `json:"label"`
	MergeField string           `json:"mergeField,omitempty"`
	Confidence float64          `json:"confidence"`
}

// Detector proposes fields for a loaded document.
type Detector interface {
	Detect(ctx context.Context, info *document.Info) ([]Detection, error)
}

var ErrNoDocument = errors.New("no document bound to the session")

// ApplyDetections adds every detection at or above minConfidence through the
// normal add-field path, so geometry is clamped and pages are checked the
// same way as for hand-placed fields. Detections that fail validation are
// skipped. The template is saved once at the end.
func (s *Session) ApplyDetections(ctx context.Context, d Detector, minConfidence float64) ([]models.Field, error) {
	if s.ctl.Preview() {
		return nil, ErrReadOnly
	}
	if s.info == nil {
		return nil, ErrNoDocument
	}
	dets, err := d.Detect(ctx, s.info)
	if err != nil {
		return nil, fmt.Errorf("detect fields: %w", err)
	}

	release := s.hold()
	defer release()

	var added []models.Field
	for i, det := range dets {
		if det.Confidence < minConfidence {
			continue
		}
		f, err := s.store.AddField(det.Type, det.Page, det.X, det.Y)
		if err != nil {
			s.logger.Debug("skipping detection", zap.Int("index", i), zap.Error(err))
			continue
		}
		patch := models.FieldPatch{}
		if det.Label != "" {
			patch.Label = &det.Label
		}
		if det.MergeField != "" {
			patch.MergeField = &det.MergeField
		}
		if det.Width > 0 && det.Height > 0 {
			pos := models.Position{X: f.Position.X, Y: f.Position.Y, Width: det.Width, Height: det.Height}
			patch.Position = &pos
		}
		updated, err := s.store.UpdateField(f.ID, patch)
		if err != nil {
			s.store.RemoveField(f.ID)
			continue
		}
		added = append(added, updated)
	}
	s.logger.Info("applied field detections", zap.Int("proposed", len(dets)), zap.Int("added", len(added)))
	return added, nil
}
