package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/events"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/fields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/substitute"
)

var (
	ErrForbidden = errors.New("template belongs to another tenant")
	ErrReadOnly  = errors.New("template is read-only")
	ErrNotActive = errors.New("template is not active")
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID   string
	TenantID string
	Role     string
}

type CreateTemplateInput struct {
	Name        string              `json:"name"`
	Type        models.TemplateType `json:"type"`
	Terms       string              `json:"terms"`
	MergeFields []string            `json:"mergeFields"`
	Settings    *models.Settings    `json:"settings"`
}

type UpdateTemplateInput struct {
	Name        *string          `json:"name"`
	Terms       *string          `json:"terms"`
	MergeFields []string         `json:"mergeFields"`
	Settings    *models.Settings `json:"settings"`
}

type TemplateService struct {
	store  repository.TemplateStore
	loader *document.Loader
	events events.Publisher
	custom []mergefields.MergeField
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewTemplateService(store repository.TemplateStore, loader *document.Loader, pub events.Publisher, logger *zap.Logger) *TemplateService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &TemplateService{
		store:  store,
		loader: loader,
		events: pub,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// SeedMergeFields registers dealership-specific tokens in every registry the
// service hands out.
func (s *TemplateService) SeedMergeFields(custom []mergefields.MergeField) {
	s.custom = append([]mergefields.MergeField(nil), custom...)
}

// Registry returns a fresh session registry with the seeded custom tokens.
func (s *TemplateService) Registry() *mergefields.Registry {
	reg := mergefields.NewRegistry()
	for _, f := range s.custom {
		if _, err := reg.AddCustom(f.Key, f.Label, f.Description); err != nil {
			s.logger.Warn("skipping seeded merge field", zap.String("key", f.Key), zap.Error(err))
		}
	}
	return reg
}

func (s *TemplateService) Create(ctx context.Context, actor Actor, in CreateTemplateInput) (*models.Template, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("template name is required")
	}
	if !in.Type.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("unknown template type %q", in.Type))
	}
	if err := s.ensureUniqueName(ctx, actor.TenantID, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	tpl := &models.Template{
		Metadata: models.Metadata{
			ID:        s.newID(),
			Name:      name,
			Type:      in.Type,
			Status:    models.StatusDraft,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: actor.UserID,
			TenantID:  actor.TenantID,
		},
		Fields:   []models.Field{},
		Terms:    in.Terms,
		Settings: models.DefaultSettings(),
	}
	if in.Settings != nil {
		tpl.Settings = *in.Settings
	}
	if err := setMergeFields(tpl, in.MergeFields); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, tpl); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TemplateCreated, actor, tpl, nil)
	s.logger.Info("template created",
		zap.String("template_id", tpl.Metadata.ID),
		zap.String("tenant_id", actor.TenantID),
		zap.String("type", string(tpl.Metadata.Type)),
	)
	return tpl, nil
}

func (s *TemplateService) Get(ctx context.Context, actor Actor, id string) (*models.Template, error) {
	tpl, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl.Metadata.TenantID != actor.TenantID {
		return nil, ErrForbidden
	}
	return tpl, nil
}

// List returns the caller's templates, newest first.
func (s *TemplateService) List(ctx context.Context, actor Actor) ([]models.TemplateListItem, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TemplateListItem, 0, len(all))
	for _, item := range all {
		if item.TenantID == actor.TenantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *TemplateService) Update(ctx context.Context, actor Actor, id string, in UpdateTemplateInput) (*models.Template, error) {
	tpl, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("template name is required")
		}
		if err := s.ensureUniqueName(ctx, actor.TenantID, name, id); err != nil {
			return nil, err
		}
		tpl.Metadata.Name = name
	}
	// Keys added on their own survive a terms edit; keys that only came from
	// the old terms are recomputed from the new ones.
	explicit := in.MergeFields
	if explicit == nil {
		explicit = withoutTokens(tpl.MergeFields, substitute.Tokens(tpl.Terms))
	}
	if in.Terms != nil {
		tpl.Terms = *in.Terms
	}
	if in.Settings != nil {
		tpl.Settings = *in.Settings
	}
	if in.Terms != nil || in.MergeFields != nil {
		if err := setMergeFields(tpl, explicit); err != nil {
			return nil, err
		}
	}
	if err := s.Save(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Save bumps updatedAt and writes the whole template. A failed write is
// returned as-is; the caller keeps its in-memory edits.
func (s *TemplateService) Save(ctx context.Context, tpl *models.Template) error {
	tpl.Metadata.UpdatedAt = s.now()
	if err := s.store.Save(ctx, tpl); err != nil {
		s.logger.Warn("template save failed", zap.String("template_id", tpl.Metadata.ID), zap.Error(err))
		return err
	}
	s.publish(ctx, events.TemplateSaved, Actor{TenantID: tpl.Metadata.TenantID}, tpl, map[string]interface{}{
		"fieldCount": len(tpl.Fields),
	})
	return nil
}

func (s *TemplateService) Delete(ctx context.Context, actor Actor, id string) error {
	tpl, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TemplateDeleted, actor, tpl, nil)
	return nil
}

// Duplicate copies a template into a new DRAFT with fresh field ids and the
// next version number.
func (s *TemplateService) Duplicate(ctx context.Context, actor Actor, id, newName string) (*models.Template, error) {
	src, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		name = src.Metadata.Name + " (Copy)"
	}
	if err := s.ensureUniqueName(ctx, actor.TenantID, name, ""); err != nil {
		return nil, err
	}

	dup := src.Clone()
	now := s.now()
	dup.Metadata.ID = s.newID()
	dup.Metadata.Name = name
	dup.Metadata.Status = models.StatusDraft
	dup.Metadata.Version = src.Metadata.Version + 1
	dup.Metadata.CreatedAt = now
	dup.Metadata.UpdatedAt = now
	dup.Metadata.CreatedBy = actor.UserID
	for i := range dup.Fields {
		dup.Fields[i].ID = "field_" + s.newID()
	}

	if err := s.store.Save(ctx, dup); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TemplateDuplicated, actor, dup, map[string]interface{}{"sourceId": src.Metadata.ID})
	return dup, nil
}

func (s *TemplateService) Transition(ctx context.Context, actor Actor, id string, next models.Status) (*models.Template, error) {
	tpl, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	prev := tpl.Metadata.Status
	if err := tpl.Transition(next); err != nil {
		return nil, err
	}
	tpl.Metadata.UpdatedAt = s.now()
	if err := s.store.Save(ctx, tpl); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TemplateTransitioned, actor, tpl, map[string]interface{}{
		"from": string(prev),
		"to":   string(next),
	})
	return tpl, nil
}

// BindDocument loads source and attaches it to the template. Rebinding to a
// document with fewer pages than the existing fields use is refused.
func (s *TemplateService) BindDocument(ctx context.Context, actor Actor, id, source string) (*models.Template, *document.Info, error) {
	if !sourceOwnedBy(source, actor.TenantID) {
		return nil, nil, ErrForbidden
	}
	tpl, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	info, err := s.loader.Load(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range tpl.Fields {
		if f.Page > info.PageCount {
			return nil, nil, models.NewValidationError(
				fmt.Sprintf("document has %d pages but field %s is on page %d", info.PageCount, f.ID, f.Page))
		}
	}
	tpl.Metadata.DocumentID = source
	tpl.Metadata.PageCount = info.PageCount
	if err := s.Save(ctx, tpl); err != nil {
		return nil, nil, err
	}
	return tpl, info, nil
}

func (s *TemplateService) AddField(ctx context.Context, actor Actor, id string, t models.FieldType, page int, x, y float64) (*models.Template, models.Field, error) {
	var added models.Field
	tpl, err := s.mutateFields(ctx, actor, id, func(st *fields.Store) error {
		f, err := st.AddField(t, page, x, y)
		added = f
		return err
	})
	return tpl, added, err
}

func (s *TemplateService) UpdateField(ctx context.Context, actor Actor, id, fieldID string, patch models.FieldPatch) (*models.Template, models.Field, error) {
	var updated models.Field
	tpl, err := s.mutateFields(ctx, actor, id, func(st *fields.Store) error {
		f, err := st.UpdateField(fieldID, patch)
		updated = f
		return err
	})
	return tpl, updated, err
}

// MoveField shifts a field by a canonical delta.
func (s *TemplateService) MoveField(ctx context.Context, actor Actor, id, fieldID string, dx, dy float64) (*models.Template, models.Field, error) {
	var moved models.Field
	tpl, err := s.mutateFields(ctx, actor, id, func(st *fields.Store) error {
		f, ok := st.MoveField(fieldID, dx, dy)
		if !ok {
			return models.ErrFieldNotFound
		}
		moved = f
		return nil
	})
	return tpl, moved, err
}

func (s *TemplateService) ResizeField(ctx context.Context, actor Actor, id, fieldID string, dw, dh float64) (*models.Template, models.Field, error) {
	var resized models.Field
	tpl, err := s.mutateFields(ctx, actor, id, func(st *fields.Store) error {
		f, ok := st.ResizeField(fieldID, dw, dh)
		if !ok {
			return models.ErrFieldNotFound
		}
		resized = f
		return nil
	})
	return tpl, resized, err
}

func (s *TemplateService) RemoveField(ctx context.Context, actor Actor, id, fieldID string) (*models.Template, error) {
	return s.mutateFields(ctx, actor, id, func(st *fields.Store) error {
		if !st.RemoveField(fieldID) {
			return models.ErrFieldNotFound
		}
		return nil
	})
}

// AddMergeField registers key in the template's mergeFields so it is required
// at finalize time.
func (s *TemplateService) AddMergeField(ctx context.Context, actor Actor, id, key string) (*models.Template, error) {
	if !mergefields.ValidKey(key) {
		return nil, models.NewValidationError(fmt.Sprintf("invalid merge field key %q", key))
	}
	tpl, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !tpl.AddMergeField(key) {
		return tpl, nil
	}
	if err := s.Save(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Render substitutes values into the terms. Unresolved tokens stay literal.
func (s *TemplateService) Render(ctx context.Context, actor Actor, id string, values map[string]string) (string, error) {
	tpl, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return substitute.Substitute(tpl.Terms, values), nil
}

func (s *TemplateService) RenderHTML(ctx context.Context, actor Actor, id string, values map[string]string) (string, error) {
	text, err := s.Render(ctx, actor, id, values)
	if err != nil {
		return "", err
	}
	return PreviewHTML(text), nil
}

func (s *TemplateService) Validate(ctx context.Context, actor Actor, id string, values map[string]string) (substitute.Result, error) {
	tpl, err := s.Get(ctx, actor, id)
	if err != nil {
		return substitute.Result{}, err
	}
	return substitute.Validate(tpl, values), nil
}

// Finalize produces the agreement text of an ACTIVE template, refusing with a
// ValidationError that lists the labels of missing values.
func (s *TemplateService) Finalize(ctx context.Context, actor Actor, id string, values map[string]string) (*models.Agreement, error) {
	tpl, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if tpl.Metadata.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: status is %s", ErrNotActive, tpl.Metadata.Status)
	}
	text, err := substitute.Finalize(tpl, values, s.Registry())
	if err != nil {
		return nil, err
	}

	agreement := &models.Agreement{
		ID:              s.newID(),
		TemplateID:      tpl.Metadata.ID,
		TemplateVersion: tpl.Metadata.Version,
		Values:          copyValues(values),
		Text:            text,
		CreatedBy:       actor.UserID,
		CreatedAt:       s.now(),
	}
	s.publish(ctx, events.AgreementFinalized, actor, tpl, map[string]interface{}{
		"agreementId": agreement.ID,
		"version":     agreement.TemplateVersion,
	})
	return agreement, nil
}

func (s *TemplateService) editable(ctx context.Context, actor Actor, id string) (*models.Template, error) {
	tpl, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if tpl.Metadata.Status == models.StatusArchived || !tpl.Settings.AllowEditing {
		return nil, ErrReadOnly
	}
	return tpl, nil
}

func (s *TemplateService) mutateFields(ctx context.Context, actor Actor, id string, fn func(*fields.Store) error) (*models.Template, error) {
	tpl, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	st, err := fields.NewStore(tpl.Fields, tpl.Metadata.PageCount)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	tpl.Fields = st.Fields()
	if err := s.Save(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) ensureUniqueName(ctx context.Context, tenantID, name, exceptID string) error {
	items, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.TenantID == tenantID && item.ID != exceptID && strings.EqualFold(item.Name, name) {
			return models.NewValidationError(fmt.Sprintf("a template named %q already exists", name))
		}
	}
	return nil
}

func (s *TemplateService) publish(ctx context.Context, typ string, actor Actor, tpl *models.Template, data map[string]interface{}) {
	err := s.events.Publish(ctx, events.Event{
		Type:       typ,
		TenantID:   tpl.Metadata.TenantID,
		TemplateID: tpl.Metadata.ID,
		Actor:      actor.UserID,
		Data:       data,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.logger.Warn("event publish failed", zap.String("type", typ), zap.String("template_id", tpl.Metadata.ID), zap.Error(err))
	}
}

// setMergeFields records the explicit keys plus every token used in the terms.
func setMergeFields(tpl *models.Template, explicit []string) error {
	tpl.MergeFields = []string{}
	for _, k := range explicit {
		if !mergefields.ValidKey(k) {
			return models.NewValidationError(fmt.Sprintf("invalid merge field key %q", k))
		}
		tpl.AddMergeField(k)
	}
	for _, k := range substitute.Tokens(tpl.Terms) {
		tpl.AddMergeField(k)
	}
	return nil
}

func withoutTokens(keys, drop []string) []string {
	skip := make(map[string]struct{}, len(drop))
	for _, k := range drop {
		skip[k] = struct{}{}
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := skip[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// sourceOwnedBy reports whether a document source may be bound by tenantID.
// Remote URLs are left to the fetcher's host allow-list; stored uploads live
// under the tenant's directory.
func sourceOwnedBy(source, tenantID string) bool {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return true
	}
	p := path.Clean("/" + strings.TrimPrefix(source, "file://"))
	return tenantID != "" && strings.HasPrefix(p, "/"+tenantID+"/")
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
