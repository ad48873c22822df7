package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

type MemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[string]*models.Template
}

func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{templates: make(map[string]*models.Template)}
}

func (s *MemoryTemplateStore) Save(ctx context.Context, tpl *models.Template) error {
	if _, err := encodeTemplate(tpl); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.Metadata.ID] = tpl.Clone()
	return nil
}

func (s *MemoryTemplateStore) Load(ctx context.Context, id string) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[id]
	if !ok {
		return nil, notFound("template", id)
	}
	return tpl.Clone(), nil
}

func (s *MemoryTemplateStore) List(ctx context.Context) ([]models.TemplateListItem, error) {
	s.mu.RLock()
	items := make([]models.TemplateListItem, 0, len(s.templates))
	for _, tpl := range s.templates {
		items = append(items, tpl.ListItem())
	}
	s.mu.RUnlock()
	sortListItems(items)
	return items, nil
}

func (s *MemoryTemplateStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return notFound("template", id)
	}
	delete(s.templates, id)
	return nil
}

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}
