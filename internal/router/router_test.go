package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/events"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/handler"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

const testSecret = "router-test-secret"

type api struct {
	t   *testing.T
	srv http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	logger := zap.NewNop()
	root := t.TempDir()

	store := repository.NewMemoryTemplateStore()
	loader := document.NewLoader(document.FileFetcher{Root: root}, document.NewContentInspector(), logger)
	templates := service.NewTemplateService(store, loader, events.NopPublisher{}, logger)
	agreements := service.NewAgreementService(repository.NewMemoryAgreementStore(), templates, logger)
	authSvc := service.NewAuthService(repository.NewMemoryUserRepo(), testSecret, logger)
	require.NoError(t, authSvc.SeedAdmin(context.Background(), "admin@dealer.test", "admin-pass", "tenant-1"))

	h := Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Templates:   handler.NewTemplateHandler(templates),
		Fields:      handler.NewFieldHandler(templates),
		Agreements:  handler.NewAgreementHandler(agreements),
		MergeFields: handler.NewMergeFieldHandler(templates),
		Documents:   handler.NewDocumentHandler(service.NewDocumentService(root, document.NewContentInspector(), logger)),
		Search:      handler.NewSearchHandler(service.NewSearchService(templates)),
		Dashboard:   handler.NewDashboardHandler(templates, agreements),
		Admin:       handler.NewAdminHandler(store),
	}
	return &api{t: t, srv: New(testSecret, h, logger)}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

func (a *api) upload(token string, data []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "bill-of-sale.png")
	require.NoError(a.t, err)
	_, err = part.Write(data)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

func (a *api) register(email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": "Sales Desk",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[service.AuthResult](a.t, rec).Token
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[service.AuthResult](a.t, rec).Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pagePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 612, 792))))
	return buf.Bytes()
}

func TestRouter_RequiresToken(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/api/v1/templates", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_TemplateLifecycle(t *testing.T) {
	a := newAPI(t)
	token := a.register("desk@dealer.test")

	rec := a.do(http.MethodPost, "/api/v1/templates", token, map[string]any{
		"name":  "Retail Purchase",
		"type":  models.TypePurchase,
		"terms": "Sold to {{customer_name}} for {{sale_price}}.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tpl := decode[models.Template](t, rec)
	base := "/api/v1/templates/" + tpl.Metadata.ID
	assert.ElementsMatch(t, []string{"customer_name", "sale_price"}, tpl.MergeFields)

	rec = a.do(http.MethodPost, base+"/fields", token, map[string]any{"type": models.FieldText, "page": 1, "x": 10, "y": 10})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "fields need a bound document")

	rec = a.upload(token, pagePNG(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	stored := decode[service.StoredDocument](t, rec)

	rec = a.do(http.MethodPost, base+"/document", token, map[string]string{"source": stored.Source})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, base+"/fields", token, map[string]any{"type": models.FieldText, "page": 1, "x": 10, "y": 10})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	field := decode[models.Field](t, rec)

	rec = a.do(http.MethodPost, base+"/fields/"+field.ID+"/move", token, map[string]float64{"dx": 5, "dy": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 15.0, decode[models.Field](t, rec).Position.X)

	rec = a.do(http.MethodPost, base+"/fields/"+field.ID+"/resize", token, map[string]float64{"dx": -1000, "dy": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.MinFieldWidth, decode[models.Field](t, rec).Position.Width)

	rec = a.do(http.MethodPost, base+"/fields/missing/move", token, map[string]float64{"dx": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	values := map[string]any{"values": map[string]string{"customer_name": "Ann Lee"}}
	rec = a.do(http.MethodPost, base+"/agreements", token, values)
	assert.Equal(t, http.StatusConflict, rec.Code, "drafts cannot be finalized")

	rec = a.do(http.MethodPost, base+"/status", token, map[string]string{"status": "ACTIVE"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, base+"/validate", token, values)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[map[string]any](t, rec)
	assert.Equal(t, false, res["ok"])
	assert.Equal(t, []any{"sale_price"}, res["missing"])

	rec = a.do(http.MethodPost, base+"/agreements", token, values)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []any{"Sale Price"}, decode[map[string]any](t, rec)["missing"])

	values["values"] = map[string]string{"customer_name": "Ann Lee", "sale_price": "$18,500"}
	rec = a.do(http.MethodPost, base+"/agreements", token, values)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	agreement := decode[models.Agreement](t, rec)
	assert.Equal(t, "Sold to Ann Lee for $18,500.", agreement.Text)

	rec = a.do(http.MethodGet, "/api/v1/agreements/"+agreement.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPost, base+"/preview", token, values)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Sold to Ann Lee")

	rec = a.do(http.MethodGet, base+"/fields.xlsx", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = a.do(http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[map[string]any](t, rec)
	assert.Equal(t, 1.0, dash["templateCount"])
	assert.Equal(t, 1.0, dash["agreementCount"])

	rec = a.do(http.MethodPost, base+"/status", token, map[string]string{"status": "DRAFT"})
	assert.Equal(t, http.StatusConflict, rec.Code, "active templates cannot return to draft")
}

func TestRouter_TenantIsolation(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner@dealer.test")
	other := a.register("other@rival.test")

	rec := a.do(http.MethodPost, "/api/v1/templates", owner, map[string]any{"name": "Lease", "type": models.TypeLease})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[models.Template](t, rec).Metadata.ID

	rec = a.do(http.MethodGet, "/api/v1/templates/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/templates", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.TemplateListItem](t, rec))

	rec = a.do(http.MethodGet, "/api/v1/templates/nope", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RegisterCannotJoinExistingTenant(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@dealer.test", "admin-pass")
	rec := a.do(http.MethodPost, "/api/v1/templates", admin, map[string]any{"name": "Secret", "type": models.TypePurchase})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[models.Template](t, rec).Metadata.ID

	rec = a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "intruder@x.test", "password": "password123", "name": "X", "tenantId": "tenant-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	intruder := decode[service.AuthResult](t, rec)
	assert.NotEqual(t, "tenant-1", intruder.User.TenantID, "body tenant is ignored")

	rec = a.do(http.MethodGet, "/api/v1/templates/"+id, intruder.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/users", intruder.Token, map[string]string{
		"email": "accomplice@x.test", "password": "password123", "name": "Y",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/users", admin, map[string]string{
		"email": "desk@dealer.test", "password": "password123", "name": "Desk",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "tenant-1", decode[models.UserResponse](t, rec).TenantID)

	desk := a.login("desk@dealer.test", "password123")
	rec = a.do(http.MethodGet, "/api/v1/templates/"+id, desk, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminRoutes(t *testing.T) {
	a := newAPI(t)
	user := a.register("desk@dealer.test")

	rec := a.do(http.MethodGet, "/api/v1/admin/templates", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := a.login("admin@dealer.test", "admin-pass")
	rec = a.do(http.MethodGet, "/api/v1/admin/templates", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SearchQueryAndBody(t *testing.T) {
	a := newAPI(t)
	token := a.register("search@dealer.test")
	for _, name := range []string{"Retail Purchase", "Fleet Lease"} {
		rec := a.do(http.MethodPost, "/api/v1/templates", token, map[string]any{
			"name": name, "type": models.TypePurchase, "terms": "Sold to {{customer_name}}.",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := a.do(http.MethodGet, "/api/v1/search?q=fleet&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	byQuery := decode[service.SearchResult](t, rec)
	require.Len(t, byQuery.Templates, 1)
	assert.Equal(t, "Fleet Lease", byQuery.Templates[0].Name)
	assert.Equal(t, "text", byQuery.Mode)

	rec = a.do(http.MethodPost, "/api/v1/search", token, map[string]any{"textQuery": "fleet", "limit": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, byQuery, decode[service.SearchResult](t, rec))

	rec = a.do(http.MethodGet, "/api/v1/search?limit=ten", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MergeFieldCatalog(t *testing.T) {
	a := newAPI(t)
	token := a.register("desk@dealer.test")

	rec := a.do(http.MethodGet, "/api/v1/merge-fields", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]any](t, rec)["groups"])

	rec = a.do(http.MethodGet, "/api/v1/merge-fields?category=nope", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode[map[string]any](t, rec)["fields"])
}
