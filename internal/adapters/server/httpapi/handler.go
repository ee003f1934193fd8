// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/hylla/dayflow/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	journal common.JournalService
	mux     *http.ServeMux
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// activityPayload is the body accepted by add and edit.
type activityPayload struct {
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	IsPrivate   bool     `json:"is_private"`
	CreateTags  bool     `json:"create_tags"`
}

// NewHandler constructs one HTTP API adapter over a journal service.
func NewHandler(journal common.JournalService) *Handler {
	h := &Handler{journal: journal, mux: http.NewServeMux()}
	h.route("/days", map[string]http.HandlerFunc{
		http.MethodGet:  h.handleListDays,
		http.MethodPost: h.handleCreateDay,
	})
	h.route("/current", map[string]http.HandlerFunc{
		http.MethodGet: h.handleGetCurrent,
	})
	h.route("/days/{date}", map[string]http.HandlerFunc{
		http.MethodGet:    h.handleGetDay,
		http.MethodDelete: h.handleDeleteDay,
	})
	h.route("/days/{date}/complete", map[string]http.HandlerFunc{
		http.MethodPost: h.handleCompleteDay,
	})
	h.route("/days/{date}/reopen", map[string]http.HandlerFunc{
		http.MethodPost: h.handleReopenDay,
	})
	h.route("/days/{date}/next_start", map[string]http.HandlerFunc{
		http.MethodGet: h.handleNextStart,
	})
	h.route("/days/{date}/activities", map[string]http.HandlerFunc{
		http.MethodPost: h.handleAddActivity,
	})
	h.route("/days/{date}/activities/{id}", map[string]http.HandlerFunc{
		http.MethodPut:    h.handleEditActivity,
		http.MethodDelete: h.handleRemoveActivity,
	})
	h.route("/tags", map[string]http.HandlerFunc{
		http.MethodGet:  h.handleListTags,
		http.MethodPost: h.handleCreateTag,
	})
	h.route("/stats", map[string]http.HandlerFunc{
		http.MethodGet: h.handleStats,
	})
	h.route("/commitment_series", map[string]http.HandlerFunc{
		http.MethodGet: h.handleCommitmentSeries,
	})
	h.route("/insights", map[string]http.HandlerFunc{
		http.MethodPost: h.handleInsight,
	})
	h.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "route not found",
			Context: map[string]any{"path": r.URL.Path},
		})
	})
	return h
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "" || !strings.HasPrefix(r.URL.Path, "/") {
		r.URL.Path = "/" + r.URL.Path
	}
	if len(r.URL.Path) > 1 {
		r.URL.Path = strings.TrimSuffix(r.URL.Path, "/")
	}
	h.mux.ServeHTTP(w, r)
}

// route registers one method pattern per handler plus a structured 405 fallback.
func (h *Handler) route(path string, handlers map[string]http.HandlerFunc) {
	methods := make([]string, 0, len(handlers))
	for method, fn := range handlers {
		methods = append(methods, method)
		h.mux.HandleFunc(method+" "+path, fn)
	}
	slices.Sort(methods)
	h.mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w, methods...)
	})
}

func (h *Handler) handleListDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.journal.ListDays(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (h *Handler) handleCreateDay(w http.ResponseWriter, r *http.Request) {
	var payload common.CreateDayRequest
	if err := decodeOptionalJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.journal.CreateDay(r.Context(), payload)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	status := http.StatusCreated
	if result.Existed {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (h *Handler) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	day, err := h.journal.GetDay(r.Context(), common.CurrentDay)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (h *Handler) handleGetDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.journal.GetDay(r.Context(), r.PathValue("date"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (h *Handler) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteDay(r.Context(), r.PathValue("date")); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCompleteDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.journal.CompleteDay(r.Context(), r.PathValue("date"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (h *Handler) handleReopenDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.journal.ReopenDay(r.Context(), r.PathValue("date"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (h *Handler) handleNextStart(w http.ResponseWriter, r *http.Request) {
	next, err := h.journal.NextStartTime(r.Context(), r.PathValue("date"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"next_start_time": next})
}

func (h *Handler) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var payload activityPayload
	if err := decodeJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	day, err := h.journal.AddActivity(r.Context(), payload.request(r.PathValue("date"), ""))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

func (h *Handler) handleEditActivity(w http.ResponseWriter, r *http.Request) {
	var payload activityPayload
	if err := decodeJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.journal.EditActivity(r.Context(), payload.request(r.PathValue("date"), r.PathValue("id")))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRemoveActivity(w http.ResponseWriter, r *http.Request) {
	result, err := h.journal.RemoveActivity(r.Context(), common.RemoveActivityRequest{
		Date:       r.PathValue("date"),
		ActivityID: r.PathValue("id"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.journal.ListTags(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (h *Handler) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	tag, err := h.journal.CreateTag(r.Context(), payload.Name)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.journal.Stats(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleCommitmentSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.journal.CommitmentSeries(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series})
}

func (h *Handler) handleInsight(w http.ResponseWriter, r *http.Request) {
	var payload common.InsightRequest
	if err := decodeOptionalJSONBody(r.Context(), w, r, &payload); err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.journal.Insight(r.Context(), payload)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (p activityPayload) request(date, id string) common.ActivityRequest {
	return common.ActivityRequest{
		Date:        date,
		ActivityID:  id,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		Description: p.Description,
		Tags:        p.Tags,
		IsPrivate:   p.IsPrivate,
		CreateTags:  p.CreateTags,
	}
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrConflict):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "conflict",
			Message: err.Error(),
			Hint:    "Reopen the day before changing its activities.",
		})
	case errors.Is(err, common.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, APIError{
			Code:    "unauthenticated",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "unavailable",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrPersistence):
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "persistence_failed",
			Message: err.Error(),
			Hint:    "Nothing was changed. Retry the request.",
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}

// decodeOptionalJSONBody decodes one optional JSON body and ignores empty payloads.
func decodeOptionalJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(out)
	if err == nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request canceled: %w", ctx.Err())
		default:
			return nil
		}
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
}
