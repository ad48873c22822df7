package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

func pngDocument(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 850, 1100))))
	return buf.Bytes()
}

func TestDocumentService_UploadThenBind(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	docs := NewDocumentService(root, document.NewContentInspector(), zap.NewNop())

	stored, err := docs.Upload(ctx, dealer, "Bill of Sale.PNG", pngDocument(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Source, "file://tenant-1/"))
	assert.True(t, strings.HasSuffix(stored.Source, ".png"))
	assert.Equal(t, 1, stored.Info.PageCount)

	loader := document.NewLoader(document.FileFetcher{Root: root}, document.NewContentInspector(), zap.NewNop())
	svc := NewTemplateService(newFixture(t).store, loader, nil, zap.NewNop())
	tpl, err := svc.Create(ctx, dealer, CreateTemplateInput{Name: "Bill of Sale", Type: models.TypePurchase})
	require.NoError(t, err)

	tpl, info, err := svc.BindDocument(ctx, dealer, tpl.Metadata.ID, stored.Source)
	require.NoError(t, err)
	assert.Equal(t, 1, tpl.Metadata.PageCount)
	assert.Equal(t, 850.0, info.Pages[0].Width)

	key := filepath.Base(stored.Source)
	data, ct, err := docs.Download(ctx, dealer, key)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.NotEmpty(t, data)

	_, _, err = docs.Download(ctx, rival, key)
	assert.ErrorIs(t, err, ErrDocumentNotFound, "other tenants cannot see the upload")

	require.NoError(t, docs.Delete(ctx, dealer, key))
	assert.ErrorIs(t, docs.Delete(ctx, dealer, key), ErrDocumentNotFound)
}

func TestDocumentService_Rejects(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	docs := NewDocumentService(root, document.NewContentInspector(), zap.NewNop())

	_, err := docs.Upload(ctx, dealer, "empty.pdf", nil)
	assert.True(t, models.IsValidationError(err))

	_, err = docs.Upload(ctx, dealer, "notes.txt", []byte("just some text"))
	assert.True(t, models.IsValidationError(err))

	_, _, err = docs.Download(ctx, dealer, "../secrets")
	assert.True(t, models.IsValidationError(err))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads are not written")
}
