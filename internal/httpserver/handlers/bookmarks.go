package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarker/internal/pageinfo"
	"github.com/MrSnakeDoc/bookmarker/internal/query"
	"github.com/MrSnakeDoc/bookmarker/internal/service"
)

const maxBookmarkBody = 64 << 10

type listResponse struct {
	Bookmarks  []domain.Bookmark `json:"bookmarks"`
	Groups     []query.Group     `json:"groups,omitempty"`
	Tags       []string          `json:"tags"`
	Categories []string          `json:"categories"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
}

// ListBookmarks serves the dashboard: ?q= &tag= &category= &sort= &group=domain
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, group, err := parseListQuery(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		view, err := d.Service.Browse(r.Context(), opts)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		resp := listResponse{
			Bookmarks:  view.Bookmarks,
			Tags:       view.Tags,
			Categories: view.Categories,
			Count:      len(view.Bookmarks),
			Total:      view.Total,
		}
		if group {
			resp.Groups = view.Groups
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseListQuery(r *http.Request) (query.Options, bool, error) {
	q := r.URL.Query()
	opts := query.Options{
		Search:   strings.TrimSpace(q.Get("q")),
		Tag:      q.Get("tag"),
		Category: q.Get("category"),
		Sort:     query.SortKey(strings.ToLower(q.Get("sort"))),
	}
	group := q.Get("group")

	err := validation.Errors{
		"sort": validation.Validate(string(opts.Sort), validation.In(
			string(query.SortDate), string(query.SortDomain), string(query.SortCategory), string(query.SortTitle))),
		"group": validation.Validate(group, validation.In("domain")),
	}.Filter()
	if err != nil {
		return opts, false, &domain.ValidationError{Field: "query", Reason: err.Error(), Err: err}
	}
	return opts, group == "domain", nil
}

// GetBookmark returns one bookmark by id.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Service.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

type createRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Favicon  string `json:"favicon"`
	Tags     string `json:"tags"` // comma separated, as typed in the form
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// CreateBookmark saves the page described in the body as a new bookmark.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := decodeBody(w, r, maxBookmarkBody, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		b, err := d.Service.Save(r.Context(), service.SaveInput{
			Page:     pageinfo.Static{Title: req.Title, URL: req.URL, FaviconURL: req.Favicon},
			Tags:     req.Tags,
			Category: req.Category,
			Notes:    req.Notes,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		w.Header().Set("Location", "/api/bookmarks/"+b.ID)
		writeJSON(w, http.StatusCreated, b)
	}
}

// DeleteBookmark removes a bookmark by id.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Tags returns the sorted tag set.
func Tags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Service.Tags(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
	}
}

// Categories returns the category set in insertion order.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := d.Service.Categories(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// AddCategory appends a category. Adding an existing one is a no-op.
func AddCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decodeBody(w, r, maxBookmarkBody, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		categories, err := d.Service.AddCategory(r.Context(), req.Name)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
	}
}

// Reset wipes the collection back to its defaults.
func Reset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Service.Reset(r.Context()); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}
