package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	api := r.With(mwAllowCIDRS(d), mwEnforceHost(d))
	api.Get("/api/bookmarks", handlers.ListBookmarks(d))
	api.Get("/api/bookmarks/{id}", handlers.GetBookmark(d))
	api.Get("/api/tags", handlers.Tags(d))
	api.Get("/api/categories", handlers.Categories(d))
	api.Get("/api/export", handlers.Export(d))
	api.Get("/api/backup", handlers.BackupStatus(d))

	// One bucket per client across every route that writes or fetches.
	limited := api.With(mw.RateLimit(d.RateLimit, d.Logger))
	limited.Post("/api/bookmarks", handlers.CreateBookmark(d))
	limited.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
	limited.Post("/api/categories", handlers.AddCategory(d))
	limited.Post("/api/reset", handlers.Reset(d))
	limited.Post("/api/import", handlers.Import(d))
	limited.Post("/api/backup", handlers.TriggerBackup(d))
	limited.Get("/api/hints", handlers.Hints(d))
}
