// Package mergefields is the catalog of merge tokens a template's text may
// reference: a fixed standard set grouped by category plus custom tokens
// added during one editing session.
package mergefields

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidKey reports whether key can appear as {{key}} in template text.
func ValidKey(key string) bool { return keyPattern.MatchString(key) }

type MergeField struct {
	Key         string   `json:"key" yaml:"key"`
	Label       string   `json:"label" yaml:"label"`
	Category    Category `json:"category" yaml:"category"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Custom      bool     `json:"custom,omitempty" yaml:"-"`
}

type Group struct {
	Category Category     `json:"category"`
	Fields   []MergeField `json:"fields"`
}

// Registry resolves token keys. Custom entries live only as long as the
// registry; persisting them is the caller's job (Template.AddMergeField).
type Registry struct {
	mu          sync.RWMutex
	standard    map[string]MergeField
	custom      map[string]MergeField
	customOrder []string
}

func NewRegistry() *Registry {
	r := &Registry{
		standard: make(map[string]MergeField, len(standardCatalog)),
		custom:   make(map[string]MergeField),
	}
	for _, mf := range standardCatalog {
		r.standard[mf.Key] = mf
	}
	return r
}

// Resolve looks key up among standard, then custom tokens.
func (r *Registry) Resolve(key string) (MergeField, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if mf, ok := r.standard[key]; ok {
		return mf, true
	}
	mf, ok := r.custom[key]
	return mf, ok
}

// Label returns the registered label for key, or a humanized form of the key
// when it is unknown.
func (r *Registry) Label(key string) string {
	if mf, ok := r.Resolve(key); ok && mf.Label != "" {
		return mf.Label
	}
	return Humanize(key)
}

// AddCustom extends the catalog for this session. Standard keys cannot be
// shadowed; re-adding a custom key replaces its label and description.
func (r *Registry) AddCustom(key, label, description string) (MergeField, error) {
	key = strings.TrimSpace(key)
	if !ValidKey(key) {
		return MergeField{}, models.NewValidationError(fmt.Sprintf("invalid merge field key %q", key))
	}
	if label == "" {
		label = Humanize(key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.standard[key]; ok {
		return MergeField{}, models.NewValidationError(fmt.Sprintf("merge field %q is already a standard field", key))
	}
	mf := MergeField{Key: key, Label: label, Category: CategoryAdditional, Description: description, Custom: true}
	if _, ok := r.custom[key]; !ok {
		r.customOrder = append(r.customOrder, key)
	}
	r.custom[key] = mf
	return mf, nil
}

func (r *Registry) Custom() []MergeField {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MergeField, 0, len(r.customOrder))
	for _, k := range r.customOrder {
		out = append(out, r.custom[k])
	}
	return out
}

// Groups returns every token grouped by category in catalog order. Custom
// tokens are listed last within Additional.
func (r *Registry) Groups() []Group {
	byCat := make(map[Category][]MergeField)
	for _, mf := range standardCatalog {
		byCat[mf.Category] = append(byCat[mf.Category], mf)
	}
	byCat[CategoryAdditional] = append(byCat[CategoryAdditional], r.Custom()...)

	groups := make([]Group, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		if len(byCat[c]) == 0 {
			continue
		}
		groups = append(groups, Group{Category: c, Fields: byCat[c]})
	}
	return groups
}

func (r *Registry) ByCategory(c Category) []MergeField {
	for _, g := range r.Groups() {
		if g.Category == c {
			return g.Fields
		}
	}
	return nil
}

// Keys returns every known key, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.standard)+len(r.custom))
	for k := range r.standard {
		keys = append(keys, k)
	}
	for k := range r.custom {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
