package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

const (
	templateKeyPrefix = "dms:template:"
	templateIndexKey  = "dms:templates"
	userKeyPrefix     = "dms:user:"
	userEmailKey      = "dms:users:email"
)

// RedisTemplateStore stores each template as a JSON string and keeps the set
// of ids in an index set for listing.
type RedisTemplateStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisTemplateStore(client *redis.Client, logger *zap.Logger) *RedisTemplateStore {
	return &RedisTemplateStore{client: client, logger: logger}
}

func (s *RedisTemplateStore) Save(ctx context.Context, tpl *models.Template) error {
	data, err := encodeTemplate(tpl)
	if err != nil {
		return err
	}
	id := tpl.Metadata.ID
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, templateKeyPrefix+id, data, 0)
		p.SAdd(ctx, templateIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save template %s: %w", id, err)
	}
	return nil
}

func (s *RedisTemplateStore) Load(ctx context.Context, id string) (*models.Template, error) {
	data, err := s.client.Get(ctx, templateKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound("template", id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis load template %s: %w", id, err)
	}
	return decodeTemplate(data)
}

func (s *RedisTemplateStore) List(ctx context.Context) ([]models.TemplateListItem, error) {
	ids, err := s.client.SMembers(ctx, templateIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list templates: %w", err)
	}
	items := make([]models.TemplateListItem, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = templateKeyPrefix + id
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list templates: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			s.logger.Warn("template index points at missing key", zap.String("id", ids[i]))
			continue
		}
		tpl, err := decodeTemplate([]byte(str))
		if err != nil {
			s.logger.Warn("skipping unreadable template", zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		items = append(items, tpl.ListItem())
	}
	sortListItems(items)
	return items, nil
}

func (s *RedisTemplateStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, templateKeyPrefix+id)
		p.SRem(ctx, templateIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete template %s: %w", id, err)
	}
	if del.Val() == 0 {
		return notFound("template", id)
	}
	return nil
}

// RedisUserRepo stores users as JSON with a hash mapping lower-cased email to
// user id.
type RedisUserRepo struct {
	client *redis.Client
}

func NewRedisUserRepo(client *redis.Client) *RedisUserRepo {
	return &RedisUserRepo{client: client}
}

func (r *RedisUserRepo) Create(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	ok, err := r.client.HSetNX(ctx, userEmailKey, strings.ToLower(u.Email), u.ID).Result()
	if err != nil {
		return fmt.Errorf("redis create user: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	if err := r.client.Set(ctx, userKeyPrefix+u.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis create user: %w", err)
	}
	return nil
}

func (r *RedisUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.client.HGet(ctx, userEmailKey, strings.ToLower(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis find user: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *RedisUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	data, err := r.client.Get(ctx, userKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis find user: %w", err)
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}
