package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

// AgreementStore keeps finalized agreements. Agreements are immutable once
// written.
type AgreementStore interface {
	Create(ctx context.Context, a *models.Agreement) error
	FindByID(ctx context.Context, id string) (*models.Agreement, error)
	FindByTemplate(ctx context.Context, templateID string) ([]models.Agreement, error)
	CountByTemplate(ctx context.Context, templateID string) (int, error)
}

type MemoryAgreementStore struct {
	mu         sync.RWMutex
	agreements map[string]models.Agreement
}

func NewMemoryAgreementStore() *MemoryAgreementStore {
	return &MemoryAgreementStore{agreements: make(map[string]models.Agreement)}
}

func (s *MemoryAgreementStore) Create(ctx context.Context, a *models.Agreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agreements[a.ID]; ok {
		return ErrConflict
	}
	s.agreements[a.ID] = *a
	return nil
}

func (s *MemoryAgreementStore) FindByID(ctx context.Context, id string) (*models.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agreements[id]
	if !ok {
		return nil, notFound("agreement", id)
	}
	return &a, nil
}

func (s *MemoryAgreementStore) FindByTemplate(ctx context.Context, templateID string) ([]models.Agreement, error) {
	s.mu.RLock()
	out := []models.Agreement{}
	for _, a := range s.agreements {
		if a.TemplateID == templateID {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()
	sortAgreements(out)
	return out, nil
}

func (s *MemoryAgreementStore) CountByTemplate(ctx context.Context, templateID string) (int, error) {
	list, err := s.FindByTemplate(ctx, templateID)
	return len(list), err
}

const (
	agreementKeyPrefix      = "dms:agreement:"
	agreementsByTemplateKey = "dms:agreements:template:"
)

// RedisAgreementStore stores each agreement as JSON and indexes ids per
// template in a sorted set scored by creation time.
type RedisAgreementStore struct {
	client *redis.Client
}

func NewRedisAgreementStore(client *redis.Client) *RedisAgreementStore {
	return &RedisAgreementStore{client: client}
}

func (s *RedisAgreementStore) Create(ctx context.Context, a *models.Agreement) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal agreement: %w", err)
	}
	key := agreementKeyPrefix + a.ID
	ok, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis create agreement %s: %w", a.ID, err)
	}
	if !ok {
		return ErrConflict
	}
	// An agreement missing from its template index would never be listed,
	// so a failed index write releases the key again.
	err = s.client.ZAdd(ctx, agreementsByTemplateKey+a.TemplateID, &redis.Z{
		Score:  float64(a.CreatedAt.UnixNano()),
		Member: a.ID,
	}).Err()
	if err != nil {
		if derr := s.client.Del(ctx, key).Err(); derr != nil {
			return fmt.Errorf("redis index agreement %s: %w (cleanup: %v)", a.ID, err, derr)
		}
		return fmt.Errorf("redis index agreement %s: %w", a.ID, err)
	}
	return nil
}

func (s *RedisAgreementStore) FindByID(ctx context.Context, id string) (*models.Agreement, error) {
	data, err := s.client.Get(ctx, agreementKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound("agreement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis load agreement %s: %w", id, err)
	}
	var a models.Agreement
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal agreement: %w", err)
	}
	return &a, nil
}

func (s *RedisAgreementStore) FindByTemplate(ctx context.Context, templateID string) ([]models.Agreement, error) {
	ids, err := s.client.ZRevRange(ctx, agreementsByTemplateKey+templateID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list agreements: %w", err)
	}
	out := make([]models.Agreement, 0, len(ids))
	for _, id := range ids {
		a, err := s.FindByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *RedisAgreementStore) CountByTemplate(ctx context.Context, templateID string) (int, error) {
	n, err := s.client.ZCard(ctx, agreementsByTemplateKey+templateID).Result()
	if err != nil {
		return 0, fmt.Errorf("redis count agreements: %w", err)
	}
	return int(n), nil
}

// sortAgreements orders newest first.
func sortAgreements(list []models.Agreement) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
