package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

func TestAgreementStores(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	stores := map[string]AgreementStore{
		"memory": NewMemoryAgreementStore(),
		"redis":  NewRedisAgreementStore(newRedisClient(t)),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			first := &models.Agreement{
				ID:         "agr-1",
				TemplateID: "tpl-1",
				TenantID:   "tenant-1",
				Values:     map[string]string{"customer_name": "Jane Doe"},
				Text:       "Sold to Jane Doe.",
				CreatedAt:  base,
			}
			second := &models.Agreement{ID: "agr-2", TemplateID: "tpl-1", TenantID: "tenant-1", CreatedAt: base.Add(time.Minute)}
			other := &models.Agreement{ID: "agr-3", TemplateID: "tpl-2", TenantID: "tenant-1", CreatedAt: base}

			for _, a := range []*models.Agreement{first, second, other} {
				require.NoError(t, store.Create(ctx, a))
			}
			assert.ErrorIs(t, store.Create(ctx, first), ErrConflict)

			got, err := store.FindByID(ctx, "agr-1")
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe", got.Values["customer_name"])

			_, err = store.FindByID(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			list, err := store.FindByTemplate(ctx, "tpl-1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "agr-2", list[0].ID, "newest first")

			n, err := store.CountByTemplate(ctx, "tpl-1")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			list, err = store.FindByTemplate(ctx, "tpl-none")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestRedisAgreementStore_IndexFailureReleasesKey(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	store := NewRedisAgreementStore(client)

	// A string at the index key makes ZADD fail with WRONGTYPE.
	require.NoError(t, client.Set(ctx, agreementsByTemplateKey+"tpl-1", "not-a-zset", 0).Err())

	a := &models.Agreement{ID: "agr-1", TemplateID: "tpl-1", TenantID: "tenant-1", CreatedAt: time.Now()}
	err := store.Create(ctx, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis index agreement agr-1")

	_, err = store.FindByID(ctx, "agr-1")
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := client.Exists(ctx, agreementKeyPrefix+"agr-1").Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, client.Del(ctx, agreementsByTemplateKey+"tpl-1").Err())
	require.NoError(t, store.Create(ctx, a), "id is free again after the rollback")
	list, err := store.FindByTemplate(ctx, "tpl-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "agr-1", list[0].ID)
}
