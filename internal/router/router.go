package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/auth"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/handler"
	mw "github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/middleware"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Templates   *handler.TemplateHandler
	Fields      *handler.FieldHandler
	Agreements  *handler.AgreementHandler
	MergeFields *handler.MergeFieldHandler
	Documents   *handler.DocumentHandler
	Search      *handler.SearchHandler
	Dashboard   *handler.DashboardHandler
	Admin       *handler.AdminHandler
}

func New(jwtSecret string, h Handlers, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery(logger))
	r.Use(mw.Logger(logger))
	r.Use(mw.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/dashboard", h.Dashboard.Dashboard)
			r.Get("/merge-fields", h.MergeFields.List)

			// Templates
			r.Get("/templates", h.Templates.List)
			r.Post("/templates", h.Templates.Create)
			r.Route("/templates/{templateId}", func(r chi.Router) {
				r.Get("/", h.Templates.Get)
				r.Put("/", h.Templates.Update)
				r.Delete("/", h.Templates.Delete)
				r.Post("/duplicate", h.Templates.Duplicate)
				r.Post("/status", h.Templates.Transition)
				r.Post("/document", h.Templates.BindDocument)
				r.Post("/merge-fields", h.Templates.AddMergeField)
				r.Post("/render", h.Templates.Render)
				r.Post("/preview", h.Templates.Preview)
				r.Post("/validate", h.Templates.Validate)
				r.Get("/fields.xlsx", h.Templates.ExportFields)

				// Fields
				r.Post("/fields", h.Fields.Add)
				r.Patch("/fields/{fieldId}", h.Fields.Update)
				r.Delete("/fields/{fieldId}", h.Fields.Remove)
				r.Post("/fields/{fieldId}/move", h.Fields.Move)
				r.Post("/fields/{fieldId}/resize", h.Fields.Resize)

				// Agreements
				r.Get("/agreements", h.Agreements.List)
				r.Post("/agreements", h.Agreements.Create)
			})
			r.Get("/agreements/{agreementId}", h.Agreements.Get)

			// Documents
			r.Post("/documents", h.Documents.Upload)
			r.Get("/documents/{docKey}", h.Documents.Download)
			r.Delete("/documents/{docKey}", h.Documents.Delete)

			// Search
			r.Get("/search", h.Search.Search)
			r.Post("/search", h.Search.Search)

			// Admin
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Get("/admin/templates", h.Admin.ListTemplates)
				r.Post("/users", h.Auth.AddUser)
			})
		})
	})

	return r
}
