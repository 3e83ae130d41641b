package server

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	warming "github.com/aouyang1/go-warming"
	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/export"
	"github.com/aouyang1/go-warming/linearmodel"
	"github.com/aouyang1/go-warming/scenario"
	"github.com/aouyang1/go-warming/stats"
	"github.com/aouyang1/go-warming/timedataset"
	"github.com/goccy/go-json"
)

var ErrBadParam = errors.New("bad request")

// number encodes NaN and infinities as null
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func numbers(vals []float64) []number {
	res := make([]number, len(vals))
	for i, v := range vals {
		res[i] = number(v)
	}
	return res
}

// statusCode maps domain errors to the http status they are reported with
func statusCode(err error) int {
	var maxBytesErr *http.MaxBytesError
	var parseErr *csv.ParseError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dataset.ErrSchema),
		errors.Is(err, dataset.ErrNotNumeric),
		errors.Is(err, scenario.ErrSingular),
		errors.Is(err, linearmodel.ErrSingularMatrix),
		errors.Is(err, stats.ErrMinimumColumns),
		errors.Is(err, stats.ErrNoData),
		errors.Is(err, timedataset.ErrNonMonotonic):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrColumnNotFound),
		errors.Is(err, ErrUploadNotFound),
		errors.Is(err, ErrUnknownPage):
		return http.StatusNotFound
	case errors.Is(err, ErrBadParam),
		errors.Is(err, dataset.ErrEmptyCSV),
		errors.Is(err, dataset.ErrColumnExists),
		errors.Is(err, dataset.ErrEmptyColumnName),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, warming.ErrUnknownModel),
		errors.Is(err, stats.ErrInvalidBins),
		errors.Is(err, scenario.ErrInvalidOffset),
		errors.Is(err, http.ErrMissingFile),
		errors.Is(err, http.ErrNotMultipart),
		errors.As(err, &parseErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("unable to encode response", "error", err)
		status = http.StatusInternalServerError
		b = []byte(`{"error":"unable to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b) //nolint:errcheck // client went away
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)
	s.logErr(r, status, err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logErr(r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		"request_id", requestID(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
}
