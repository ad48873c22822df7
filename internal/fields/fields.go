// Package fields holds the ordered field list of one template. Every mutation
// is computed as a new list by the pure helpers below and then committed, so
// no stored field is ever modified in place.
package fields

import (
	"fmt"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

// Move shifts field id by (dx, dy), clamping the origin at zero.
func Move(fields []models.Field, id string, dx, dy float64) ([]models.Field, bool) {
	return mapField(fields, id, func(f models.Field) models.Field {
		f.Position.X = max(0, f.Position.X+dx)
		f.Position.Y = max(0, f.Position.Y+dy)
		return f
	})
}

// Resize grows field id by (dw, dh), never below the minimum field size.
func Resize(fields []models.Field, id string, dw, dh float64) ([]models.Field, bool) {
	return mapField(fields, id, func(f models.Field) models.Field {
		f.Position.Width = max(models.MinFieldWidth, f.Position.Width+dw)
		f.Position.Height = max(models.MinFieldHeight, f.Position.Height+dh)
		return f
	})
}

func Remove(fields []models.Field, id string) ([]models.Field, bool) {
	out := make([]models.Field, 0, len(fields))
	found := false
	for _, f := range fields {
		if f.ID == id {
			found = true
			continue
		}
		out = append(out, f.Clone())
	}
	return out, found
}

func Append(fields []models.Field, f models.Field) []models.Field {
	out := models.CloneFields(fields)
	return append(out, f.Clone())
}

// Apply merges a property-panel patch into field id. pageCount bounds the
// page member; geometry is clamped rather than rejected.
func Apply(fields []models.Field, id string, patch models.FieldPatch, pageCount int) ([]models.Field, error) {
	var applyErr error
	out, found := mapField(fields, id, func(f models.Field) models.Field {
		if patch.Type != nil {
			if !patch.Type.Valid() {
				applyErr = models.NewValidationError(fmt.Sprintf("unknown field type %q", *patch.Type))
				return f
			}
			f.Type = *patch.Type
		}
		if patch.Page != nil {
			if *patch.Page < 1 || *patch.Page > pageCount {
				applyErr = models.NewValidationError(fmt.Sprintf("page %d outside document (1..%d)", *patch.Page, pageCount))
				return f
			}
			f.Page = *patch.Page
		}
		if patch.Label != nil {
			f.Label = *patch.Label
		}
		if patch.Position != nil {
			f.Position = patch.Position.Clamp()
		}
		if patch.Required != nil {
			f.Required = *patch.Required
		}
		if patch.DefaultValue != nil {
			f.DefaultValue = *patch.DefaultValue
		}
		if patch.Options != nil {
			f.Options = append([]string(nil), patch.Options...)
		}
		if patch.MergeField != nil {
			f.MergeField = *patch.MergeField
		}
		if patch.Validation != nil {
			v := models.Field{Validation: patch.Validation}.Clone()
			f.Validation = v.Validation
		}
		if f.Type != models.FieldDropdown {
			f.Options = nil
		}
		return f
	})
	if !found {
		return fields, fmt.Errorf("%w: %s", models.ErrFieldNotFound, id)
	}
	if applyErr != nil {
		return fields, applyErr
	}
	return out, nil
}

func mapField(fields []models.Field, id string, fn func(models.Field) models.Field) ([]models.Field, bool) {
	out := make([]models.Field, len(fields))
	found := false
	for i, f := range fields {
		f = f.Clone()
		if f.ID == id {
			f = fn(f)
			found = true
		}
		out[i] = f
	}
	if !found {
		return fields, false
	}
	return out, true
}
