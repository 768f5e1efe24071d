package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookmarksSaved counts bookmarks created from an active page.
	BookmarksSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarker_bookmarks_saved_total",
		Help: "Total number of bookmarks saved",
	})

	// BookmarksDeleted counts explicit deletions.
	BookmarksDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarker_bookmarks_deleted_total",
		Help: "Total number of bookmarks deleted",
	})

	// Imports counts import runs by format and mode (merge or overwrite).
	Imports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarker_imports_total",
		Help: "Total number of imports",
	}, []string{"format", "mode"})

	// ImportedBookmarks counts bookmarks created by imports.
	ImportedBookmarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarker_imported_bookmarks_total",
		Help: "Total number of bookmarks created by imports",
	}, []string{"format"})

	// Exports counts export runs by format.
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarker_exports_total",
		Help: "Total number of exports",
	}, []string{"format"})

	// FormatErrors counts rejected import documents.
	FormatErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarker_format_errors_total",
		Help: "Total number of import documents rejected as malformed",
	}, []string{"format"})

	// StoreFailures counts failed load and save calls against the backend.
	StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarker_store_failures_total",
		Help: "Total number of key-value store failures",
	}, []string{"op"})

	// StoreConflicts counts saves rejected by the revision check.
	StoreConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarker_store_conflicts_total",
		Help: "Total number of saves rejected because the revision moved",
	})

	// Backups counts scheduled and manual backup runs by result.
	Backups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarker_backups_total",
		Help: "Total number of collection backups",
	}, []string{"result"})

	// HTTPRequests counts handled requests by method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "status"})

	// HTTPRequestDuration tracks request latency by method.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookmarker_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"method"})
)
