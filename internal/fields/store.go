package fields

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

// ChangeFunc receives the full field list after every committed mutation.
type ChangeFunc func(fields []models.Field)

// Store is the single owner of a template's field list and of the editor's
// single selection. It never persists; hosts observe it through OnFieldsChange.
type Store struct {
	fields    []models.Field
	selected  string
	pageCount int
	onChange  ChangeFunc
	newID     func() string
}

// NewStore binds initial fields to a document with pageCount pages.
func NewStore(initial []models.Field, pageCount int) (*Store, error) {
	s := &Store{pageCount: pageCount, newID: newFieldID}
	if err := s.Replace(initial); err != nil {
		return nil, err
	}
	return s, nil
}

func newFieldID() string {
	return "field_" + uuid.NewString()
}

func (s *Store) OnFieldsChange(fn ChangeFunc) { s.onChange = fn }

// SetIDGenerator overrides id allocation. Used by tests and imports that must
// keep deterministic ids.
func (s *Store) SetIDGenerator(fn func() string) { s.newID = fn }

func (s *Store) SetPageCount(n int) { s.pageCount = n }

func (s *Store) PageCount() int { return s.pageCount }

// Replace swaps the whole list, e.g. after loading a template. Ids must be
// unique; geometry is clamped.
func (s *Store) Replace(list []models.Field) error {
	seen := make(map[string]struct{}, len(list))
	out := make([]models.Field, 0, len(list))
	for _, f := range list {
		if f.ID == "" {
			return models.NewValidationError("field without id")
		}
		if _, dup := seen[f.ID]; dup {
			return models.NewValidationError(fmt.Sprintf("duplicate field id %q", f.ID))
		}
		seen[f.ID] = struct{}{}
		f = f.Clone()
		f.Position = f.Position.Clamp()
		out = append(out, f)
	}
	s.fields = out
	if _, ok := seen[s.selected]; !ok {
		s.selected = ""
	}
	return nil
}

func (s *Store) Fields() []models.Field { return models.CloneFields(s.fields) }

func (s *Store) Len() int { return len(s.fields) }

func (s *Store) Field(id string) (models.Field, bool) {
	for _, f := range s.fields {
		if f.ID == id {
			return f.Clone(), true
		}
	}
	return models.Field{}, false
}

func (s *Store) FieldsOnPage(page int) []models.Field {
	var out []models.Field
	for _, f := range s.fields {
		if f.Page == page {
			out = append(out, f.Clone())
		}
	}
	return out
}

// AddField places a new field of type t at canonical (x, y) on page.
func (s *Store) AddField(t models.FieldType, page int, x, y float64) (models.Field, error) {
	if !t.Valid() {
		return models.Field{}, models.NewValidationError(fmt.Sprintf("unknown field type %q", t))
	}
	if s.pageCount < 1 {
		return models.Field{}, models.NewValidationError("field requires a bound document")
	}
	if page < 1 || page > s.pageCount {
		return models.Field{}, models.NewValidationError(fmt.Sprintf("page %d outside document (1..%d)", page, s.pageCount))
	}
	id := s.newID()
	for _, exists := s.Field(id); exists; _, exists = s.Field(id) {
		id = newFieldID()
	}
	w, h := t.DefaultSize()
	f := models.Field{
		ID:       id,
		Type:     t,
		Label:    t.DefaultLabel(),
		Position: models.Position{X: x, Y: y, Width: w, Height: h}.Clamp(),
		Page:     page,
	}
	s.commit(Append(s.fields, f))
	return f.Clone(), nil
}

func (s *Store) MoveField(id string, dx, dy float64) (models.Field, bool) {
	next, ok := Move(s.fields, id, dx, dy)
	if !ok {
		return models.Field{}, false
	}
	s.commit(next)
	return s.Field(id)
}

func (s *Store) ResizeField(id string, dw, dh float64) (models.Field, bool) {
	next, ok := Resize(s.fields, id, dw, dh)
	if !ok {
		return models.Field{}, false
	}
	s.commit(next)
	return s.Field(id)
}

func (s *Store) UpdateField(id string, patch models.FieldPatch) (models.Field, error) {
	next, err := Apply(s.fields, id, patch, s.pageCount)
	if err != nil {
		return models.Field{}, err
	}
	s.commit(next)
	f, _ := s.Field(id)
	return f, nil
}

func (s *Store) RemoveField(id string) bool {
	next, ok := Remove(s.fields, id)
	if !ok {
		return false
	}
	if s.selected == id {
		s.selected = ""
	}
	s.commit(next)
	return true
}

// SelectField makes id the only selected field. An empty or unknown id clears
// the selection.
func (s *Store) SelectField(id string) {
	if _, ok := s.Field(id); !ok {
		s.selected = ""
		return
	}
	s.selected = id
}

func (s *Store) Selected() (models.Field, bool) {
	if s.selected == "" {
		return models.Field{}, false
	}
	return s.Field(s.selected)
}

func (s *Store) SelectedID() string { return s.selected }

func (s *Store) commit(next []models.Field) {
	s.fields = next
	if s.onChange != nil {
		s.onChange(models.CloneFields(next))
	}
}
