// Package editor is the headless editing session behind the template editor
// UI. A Session binds one template to its page canvas, field store,
// pointer controller and merge-field registry, and writes field changes back
// into the template.
//
// A Session is driven by a single UI goroutine and is not safe for
// concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/canvas"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/fields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/interact"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

const saveTimeout = 10 * time.Second

// LetterPage is assumed for a template whose document has not been loaded
// yet in this session.
var LetterPage = canvas.PageSize{Width: 612, Height: 792}

var ErrReadOnly = errors.New("template is read-only")

// Saver persists a whole template. The template service satisfies it.
type Saver interface {
	Save(ctx context.Context, tpl *models.Template) error
}

type Session struct {
	tpl      *models.Template
	view     *canvas.Model
	store    *fields.Store
	ctl      *interact.Controller
	registry *mergefields.Registry
	saver    Saver
	logger   *zap.Logger

	info        *document.Info
	dirty       bool
	held        int
	lastSaveErr error
}

func NewSession(tpl *models.Template, saver Saver, reg *mergefields.Registry, target interact.EventTarget, logger *zap.Logger) (*Session, error) {
	pages := make([]canvas.PageSize, tpl.Metadata.PageCount)
	for i := range pages {
		pages[i] = LetterPage
	}
	view := canvas.New(pages)
	store, err := fields.NewStore(tpl.Fields, view.PageCount())
	if err != nil {
		return nil, err
	}
	s := &Session{
		tpl:      tpl.Clone(),
		view:     view,
		store:    store,
		ctl:      interact.NewController(store, view, target),
		registry: reg,
		saver:    saver,
		logger:   logger.With(zap.String("template_id", tpl.Metadata.ID)),
	}
	store.OnFieldsChange(s.fieldsChanged)
	s.ctl.OnEnd(func(interact.State) { s.flush() })
	if s.readOnly() {
		s.ctl.SetPreview(true)
	}
	return s, nil
}

func (s *Session) Template() *models.Template       { return s.tpl.Clone() }
func (s *Session) Canvas() *canvas.Model            { return s.view }
func (s *Session) Fields() *fields.Store            { return s.store }
func (s *Session) Controller() *interact.Controller { return s.ctl }
func (s *Session) Registry() *mergefields.Registry  { return s.registry }
func (s *Session) Document() *document.Info         { return s.info }
func (s *Session) Dirty() bool                      { return s.dirty }

// LastSaveError is the result of the most recent save attempt. A failed save
// keeps the in-memory edits and the session stays dirty.
func (s *Session) LastSaveError() error { return s.lastSaveErr }

// SetPreview switches between editing and preview. Read-only templates stay
// in preview.
func (s *Session) SetPreview(on bool) {
	if s.readOnly() {
		on = true
	}
	s.ctl.SetPreview(on)
}

// AddField places a field at canonical coordinates.
func (s *Session) AddField(t models.FieldType, page int, x, y float64) (models.Field, error) {
	if s.ctl.Preview() {
		return models.Field{}, ErrReadOnly
	}
	return s.store.AddField(t, page, x, y)
}

// AddFieldAt places a field where the user clicked: visual is the pointer
// position and origin the top-left of the page in the same visual space.
func (s *Session) AddFieldAt(t models.FieldType, page int, visual, origin canvas.Point) (models.Field, error) {
	p := s.view.ToCanonical(visual, origin)
	return s.AddField(t, page, p.X, p.Y)
}

func (s *Session) UpdateField(id string, patch models.FieldPatch) (models.Field, error) {
	if s.ctl.Preview() {
		return models.Field{}, ErrReadOnly
	}
	return s.store.UpdateField(id, patch)
}

func (s *Session) RemoveField(id string) error {
	if s.ctl.Preview() {
		return ErrReadOnly
	}
	if !s.store.RemoveField(id) {
		return models.ErrFieldNotFound
	}
	return nil
}

// BindDocument waits for h to settle and adopts its page geometry. A failed
// load is returned unchanged and leaves the session as it was; the host may
// call h.Retry and bind again.
func (s *Session) BindDocument(ctx context.Context, h *document.Handle) (*document.Info, error) {
	info, err := h.Wait(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range s.store.Fields() {
		if f.Page > info.PageCount {
			return nil, models.NewValidationError(
				fmt.Sprintf("document has %d pages but field %s is on page %d", info.PageCount, f.ID, f.Page))
		}
	}
	s.info = info
	s.view.SetPages(info.Pages)
	s.store.SetPageCount(info.PageCount)
	s.tpl.Metadata.DocumentID = h.Source()
	s.tpl.Metadata.PageCount = info.PageCount
	s.dirty = true
	s.autosave()
	return info, nil
}

// AddMergeField registers a custom token for this session. With persist the
// key is also recorded in the template's mergeFields, which makes it required
// at finalize time.
func (s *Session) AddMergeField(key, label, description string, persist bool) (mergefields.MergeField, error) {
	mf, err := s.registry.AddCustom(key, label, description)
	if err != nil {
		return mergefields.MergeField{}, err
	}
	if persist && s.tpl.AddMergeField(key) {
		s.dirty = true
		s.autosave()
	}
	return mf, nil
}

// Save writes the template now, regardless of the autoSave setting.
func (s *Session) Save(ctx context.Context) error {
	err := s.saver.Save(ctx, s.tpl)
	s.lastSaveErr = err
	if err != nil {
		s.logger.Warn("template save failed", zap.Error(err))
		return err
	}
	s.dirty = false
	return nil
}

// Close ends any interaction in flight and releases its listeners.
func (s *Session) Close() {
	s.ctl.Close()
}

func (s *Session) readOnly() bool {
	return !s.tpl.Settings.AllowEditing || s.tpl.Metadata.Status == models.StatusArchived
}

func (s *Session) fieldsChanged(list []models.Field) {
	s.tpl.Fields = list
	s.dirty = true
	// A drag commits on every pointer move; save once when it ends.
	if s.ctl.Active() {
		return
	}
	s.autosave()
}

func (s *Session) flush() {
	if s.dirty {
		s.autosave()
	}
}

// hold suspends autosave until the returned func is called, then flushes.
func (s *Session) hold() func() {
	s.held++
	return func() {
		s.held--
		s.flush()
	}
}

func (s *Session) autosave() {
	if !s.tpl.Settings.AutoSave || s.held > 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	s.Save(ctx)
}
