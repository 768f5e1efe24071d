package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/bookmarker/internal/codec"
	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/utils"
)

// Import accepts a raw body or a multipart "file" field.
// The format comes from ?format= or from the uploaded file name.
// ?overwrite=true replaces the bookmarks instead of merging.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overwrite, err := parseBool(r.URL.Query().Get("overwrite"))
		if err != nil {
			writeError(w, d.Logger, &domain.ValidationError{Field: "overwrite", Reason: "must be a boolean", Err: err})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, d.MaxImportBytes)
		data, filename, err := readUpload(r, d.Logger)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		format, err := importFormat(r.URL.Query().Get("format"), filename)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		res, err := d.Service.Import(r.Context(), format, data, overwrite)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func readUpload(r *http.Request, log logger.Logger) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return data, "", err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		return nil, "", &domain.ValidationError{Field: "file", Reason: "multipart field \"file\" is required", Err: err}
	}
	defer utils.MustClose(file, log, "upload")

	data, err := io.ReadAll(file)
	return data, header.Filename, err
}

func importFormat(param, filename string) (codec.Format, error) {
	switch {
	case param != "":
		return codec.ParseFormat(param)
	case filename != "":
		return codec.DetectFormat(filename)
	default:
		return "", &domain.ValidationError{Field: "format", Reason: "format is required for a raw body"}
	}
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// Export downloads the whole collection in ?format= (json by default).
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := codec.FormatJSON
		if p := strings.TrimSpace(r.URL.Query().Get("format")); p != "" {
			f, err := codec.ParseFormat(p)
			if err != nil {
				writeError(w, d.Logger, &domain.ValidationError{Field: "format", Reason: err.Error(), Err: err})
				return
			}
			format = f
		}

		exp, err := d.Service.Export(r.Context(), format)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		w.Header().Set("Content-Type", exp.ContentType+"; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exp.FileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(exp.Data); err != nil {
			d.Logger.Debug("failed to write export", logger.Error(err))
		}
	}
}
