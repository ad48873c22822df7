package models

import "strings"

type FieldType string

const (
	FieldText      FieldType = "text"
	FieldSignature FieldType = "signature"
	FieldDate      FieldType = "date"
	FieldCheckbox  FieldType = "checkbox"
	FieldDropdown  FieldType = "dropdown"
	FieldNumber    FieldType = "number"
	FieldEmail     FieldType = "email"
)

// Geometry policy. Two editor call sites disagreed (30x20 vs 50x20 minimum,
// 120x30 vs 150x30 default); these are the canonical values.
const (
	MinFieldWidth  = 30.0
	MinFieldHeight = 20.0

	DefaultFieldWidth  = 120.0
	DefaultFieldHeight = 30.0
	CheckboxSize       = 30.0
)

var fieldTypes = []FieldType{
	FieldText, FieldSignature, FieldDate, FieldCheckbox, FieldDropdown, FieldNumber, FieldEmail,
}

func FieldTypes() []FieldType {
	out := make([]FieldType, len(fieldTypes))
	copy(out, fieldTypes)
	return out
}

func (t FieldType) Valid() bool {
	for _, ft := range fieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// DefaultLabel is the label a freshly placed field gets, e.g. "Signature Field".
func (t FieldType) DefaultLabel() string {
	s := string(t)
	if s == "" {
		return "Field"
	}
	return strings.ToUpper(s[:1]) + s[1:] + " Field"
}

// DefaultSize returns the canonical width and height for a new field of this type.
func (t FieldType) DefaultSize() (float64, float64) {
	if t == FieldCheckbox {
		return CheckboxSize, CheckboxSize
	}
	return DefaultFieldWidth, DefaultFieldHeight
}

// Position is expressed in canonical (100% zoom) units.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp pins the position to the geometry invariants: non-negative origin and
// minimum size.
func (p Position) Clamp() Position {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Width < MinFieldWidth {
		p.Width = MinFieldWidth
	}
	if p.Height < MinFieldHeight {
		p.Height = MinFieldHeight
	}
	return p
}

type Validation struct {
	Pattern   string   `json:"pattern,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// Field is a positioned, typed annotation on one page of a template.
type Field struct {
	ID           string      `json:"id"`
	Type         FieldType   `json:"type"`
	Label        string      `json:"label"`
	Position     Position    `json:"position"`
	Page         int         `json:"page"`
	Required     bool        `json:"required"`
	DefaultValue string      `json:"defaultValue,omitempty"`
	Options      []string    `json:"options,omitempty"`
	MergeField   string      `json:"mergeField,omitempty"`
	Validation   *Validation `json:"validation,omitempty"`
}

// Clone returns a deep copy so callers can never alias slices or pointers of
// a stored field.
func (f Field) Clone() Field {
	if f.Options != nil {
		f.Options = append([]string(nil), f.Options...)
	}
	if f.Validation != nil {
		v := *f.Validation
		if v.MinLength != nil {
			n := *v.MinLength
			v.MinLength = &n
		}
		if v.MaxLength != nil {
			n := *v.MaxLength
			v.MaxLength = &n
		}
		if v.Min != nil {
			n := *v.Min
			v.Min = &n
		}
		if v.Max != nil {
			n := *v.Max
			v.Max = &n
		}
		f.Validation = &v
	}
	return f
}

// FieldPatch carries property-panel edits. Nil members are left untouched.
type FieldPatch struct {
	Type         *FieldType  `json:"type,omitempty"`
	Label        *string     `json:"label,omitempty"`
	Position     *Position   `json:"position,omitempty"`
	Page         *int        `json:"page,omitempty"`
	Required     *bool       `json:"required,omitempty"`
	DefaultValue *string     `json:"defaultValue,omitempty"`
	Options      []string    `json:"options,omitempty"`
	MergeField   *string     `json:"mergeField,omitempty"`
	Validation   *Validation `json:"validation,omitempty"`
}

func CloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	for i, f := range in {
		out[i] = f.Clone()
	}
	return out
}
