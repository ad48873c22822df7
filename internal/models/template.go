package models

import (
	"errors"
	"fmt"
	"time"
)

type TemplateType string

const (
	TypePurchase TemplateType = "PURCHASE"
	TypeLease    TemplateType = "LEASE"
	TypeService  TemplateType = "SERVICE"
	TypeWarranty TemplateType = "WARRANTY"
)

func (t TemplateType) Valid() bool {
	switch t {
	case TypePurchase, TypeLease, TypeService, TypeWarranty:
		return true
	}
	return false
}

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransition reports whether a template in status s may move to next.
// The lifecycle is strictly DRAFT -> ACTIVE -> ARCHIVED.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusActive
	case StatusActive:
		return next == StatusArchived
	}
	return false
}

type Metadata struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       TemplateType `json:"type"`
	Status     Status       `json:"status"`
	Version    int          `json:"version"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	CreatedBy  string       `json:"createdBy"`
	TenantID   string       `json:"tenantId,omitempty"`
	DocumentID string       `json:"documentId,omitempty"`
	PageCount  int          `json:"pageCount,omitempty"`
}

type Settings struct {
	AllowEditing     bool `json:"allowEditing"`
	RequireAllFields bool `json:"requireAllFields"`
	AutoSave         bool `json:"autoSave"`
}

func DefaultSettings() Settings {
	return Settings{AllowEditing: true, RequireAllFields: true}
}

// Template is persisted as a unit: metadata, positioned fields, the merge
// tokens its terms depend on, and editor settings.
type Template struct {
	Metadata    Metadata `json:"metadata"`
	Fields      []Field  `json:"fields"`
	MergeFields []string `json:"mergeFields"`
	Terms       string   `json:"terms"`
	Settings    Settings `json:"settings"`
}

func (t *Template) ID() string { return t.Metadata.ID }

// Transition moves the template to next, refusing anything but the forward
// DRAFT -> ACTIVE -> ARCHIVED steps.
func (t *Template) Transition(next Status) error {
	if !t.Metadata.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Metadata.Status, next)
	}
	t.Metadata.Status = next
	return nil
}

// AddMergeField records key as a token the terms depend on. It reports
// whether the key was new.
func (t *Template) AddMergeField(key string) bool {
	for _, k := range t.MergeFields {
		if k == key {
			return false
		}
	}
	t.MergeFields = append(t.MergeFields, key)
	return true
}

func (t *Template) Clone() *Template {
	c := *t
	c.Fields = CloneFields(t.Fields)
	if t.MergeFields != nil {
		c.MergeFields = append([]string(nil), t.MergeFields...)
	}
	return &c
}

func (t *Template) ListItem() TemplateListItem {
	return TemplateListItem{
		ID:         t.Metadata.ID,
		Name:       t.Metadata.Name,
		Type:       t.Metadata.Type,
		Status:     t.Metadata.Status,
		Version:    t.Metadata.Version,
		UpdatedAt:  t.Metadata.UpdatedAt,
		FieldCount: len(t.Fields),
		TenantID:   t.Metadata.TenantID,
	}
}

type TemplateListItem struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       TemplateType `json:"type"`
	Status     Status       `json:"status"`
	Version    int          `json:"version"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	FieldCount int          `json:"fieldCount"`
	TenantID   string       `json:"tenantId,omitempty"`
}
