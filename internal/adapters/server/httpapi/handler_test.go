package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hylla/dayflow/internal/adapters/server/common"
	"github.com/hylla/dayflow/internal/domain"
)

// stubJournal provides deterministic journal responses for handler tests.
type stubJournal struct {
	days        []common.DayView
	day         common.DayView
	created     common.CreateDayResult
	edited      common.EditActivityResult
	removed     common.RemoveActivityResult
	tags        []domain.Tag
	stats       common.StatsView
	series      []domain.CommitmentData
	insight     common.InsightResult
	err         error
	lastDate    string
	lastCreate  common.CreateDayRequest
	lastAct     common.ActivityRequest
	lastRemove  common.RemoveActivityRequest
	lastTag     string
	lastInsight common.InsightRequest
}

func (s *stubJournal) ListDays(context.Context) ([]common.DayView, error) {
	return s.days, s.err
}

func (s *stubJournal) GetDay(_ context.Context, date string) (common.DayView, error) {
	s.lastDate = date
	return s.day, s.err
}

func (s *stubJournal) CreateDay(_ context.Context, req common.CreateDayRequest) (common.CreateDayResult, error) {
	s.lastCreate = req
	return s.created, s.err
}

func (s *stubJournal) AddActivity(_ context.Context, req common.ActivityRequest) (common.DayView, error) {
	s.lastAct = req
	return s.day, s.err
}

func (s *stubJournal) EditActivity(_ context.Context, req common.ActivityRequest) (common.EditActivityResult, error) {
	s.lastAct = req
	return s.edited, s.err
}

func (s *stubJournal) RemoveActivity(_ context.Context, req common.RemoveActivityRequest) (common.RemoveActivityResult, error) {
	s.lastRemove = req
	return s.removed, s.err
}

func (s *stubJournal) CompleteDay(_ context.Context, date string) (common.DayView, error) {
	s.lastDate = date
	return s.day, s.err
}

func (s *stubJournal) ReopenDay(_ context.Context, date string) (common.DayView, error) {
	s.lastDate = date
	return s.day, s.err
}

func (s *stubJournal) DeleteDay(_ context.Context, date string) error {
	s.lastDate = date
	return s.err
}

func (s *stubJournal) NextStartTime(_ context.Context, date string) (string, error) {
	s.lastDate = date
	return "10:30", s.err
}

func (s *stubJournal) ListTags(context.Context) ([]domain.Tag, error) {
	return s.tags, s.err
}

func (s *stubJournal) CreateTag(_ context.Context, name string) (domain.Tag, error) {
	s.lastTag = name
	return domain.Tag{ID: "t9", Name: name, Color: "#3b82f6"}, s.err
}

func (s *stubJournal) Stats(context.Context) (common.StatsView, error) {
	return s.stats, s.err
}

func (s *stubJournal) CommitmentSeries(context.Context) ([]domain.CommitmentData, error) {
	return s.series, s.err
}

func (s *stubJournal) Insight(_ context.Context, req common.InsightRequest) (common.InsightResult, error) {
	s.lastInsight = req
	return s.insight, s.err
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var envelope ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return envelope
}

// TestHandlerGetDay verifies day lookup by path date.
func TestHandlerGetDay(t *testing.T) {
	stub := &stubJournal{day: common.DayView{Day: domain.Day{ID: "d1", Date: "2026-02-21"}, NextStartTime: "09:00"}}
	rec := serve(t, NewHandler(stub), http.MethodGet, "/days/2026-02-21", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if stub.lastDate != "2026-02-21" {
		t.Fatalf("date = %q, want 2026-02-21", stub.lastDate)
	}
	var got common.DayView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.ID != "d1" || got.NextStartTime != "09:00" {
		t.Fatalf("unexpected day %#v", got)
	}
}

// TestHandlerCurrentDay verifies the current route forwards the current marker.
func TestHandlerCurrentDay(t *testing.T) {
	stub := &stubJournal{}
	rec := serve(t, NewHandler(stub), http.MethodGet, "/current", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if stub.lastDate != common.CurrentDay {
		t.Fatalf("date = %q, want %q", stub.lastDate, common.CurrentDay)
	}
}

// TestHandlerCreateDayStatus verifies 201 for new days and 200 for existing ones.
func TestHandlerCreateDayStatus(t *testing.T) {
	stub := &stubJournal{}
	rec := serve(t, NewHandler(stub), http.MethodPost, "/days", `{"date":"2026-02-21"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if stub.lastCreate.Date != "2026-02-21" {
		t.Fatalf("date = %q, want 2026-02-21", stub.lastCreate.Date)
	}

	stub.created = common.CreateDayResult{Existed: true, NeedsReopen: true}
	rec = serve(t, NewHandler(stub), http.MethodPost, "/days", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got common.CreateDayResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.NeedsReopen {
		t.Fatal("expected needs_reopen = true")
	}
}

// TestHandlerActivityRoutes verifies add, edit, and remove wiring.
func TestHandlerActivityRoutes(t *testing.T) {
	stub := &stubJournal{}
	h := NewHandler(stub)

	rec := serve(t, h, http.MethodPost, "/days/2026-02-21/activities",
		`{"start_time":"09:00","end_time":"10:00","description":"Leitura","tags":["Estudo"],"create_tags":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if stub.lastAct.Date != "2026-02-21" || stub.lastAct.Description != "Leitura" || !stub.lastAct.CreateTags {
		t.Fatalf("unexpected add request %#v", stub.lastAct)
	}
	if len(stub.lastAct.Tags) != 1 || stub.lastAct.Tags[0] != "Estudo" {
		t.Fatalf("tags = %#v, want [Estudo]", stub.lastAct.Tags)
	}

	rec = serve(t, h, http.MethodPut, "/days/2026-02-21/activities/a1",
		`{"start_time":"09:00","end_time":"11:00","description":"Leitura longa"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, want %d", rec.Code, http.StatusOK)
	}
	if stub.lastAct.ActivityID != "a1" || stub.lastAct.EndTime != "11:00" {
		t.Fatalf("unexpected edit request %#v", stub.lastAct)
	}

	stub.removed = common.RemoveActivityResult{Removed: true, DayDeleted: true}
	rec = serve(t, h, http.MethodDelete, "/days/2026-02-21/activities/a1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d, want %d", rec.Code, http.StatusOK)
	}
	if stub.lastRemove.Date != "2026-02-21" || stub.lastRemove.ActivityID != "a1" {
		t.Fatalf("unexpected remove request %#v", stub.lastRemove)
	}
	var removed common.RemoveActivityResult
	if err := json.NewDecoder(rec.Body).Decode(&removed); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !removed.DayDeleted || removed.Day != nil {
		t.Fatalf("unexpected remove result %#v", removed)
	}
}

// TestHandlerLifecycleRoutes verifies complete, reopen, delete, and next_start wiring.
func TestHandlerLifecycleRoutes(t *testing.T) {
	stub := &stubJournal{}
	h := NewHandler(stub)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodPost, "/days/2026-02-20/complete", http.StatusOK},
		{http.MethodPost, "/days/2026-02-20/reopen", http.StatusOK},
		{http.MethodGet, "/days/2026-02-20/next_start", http.StatusOK},
		{http.MethodDelete, "/days/2026-02-20", http.StatusNoContent},
	}
	for _, tt := range cases {
		stub.lastDate = ""
		rec := serve(t, h, tt.method, tt.path, "")
		if rec.Code != tt.status {
			t.Fatalf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
		if stub.lastDate != "2026-02-20" {
			t.Fatalf("%s %s date = %q, want 2026-02-20", tt.method, tt.path, stub.lastDate)
		}
	}
}

// TestHandlerTagsStatsSeries verifies read-only aggregate routes.
func TestHandlerTagsStatsSeries(t *testing.T) {
	stub := &stubJournal{
		tags:   domain.DefaultTags(),
		stats:  common.StatsView{DailyGoal: 6, Stats: domain.Stats{TotalActivities: 9}},
		series: []domain.CommitmentData{{Date: "2026-02-20", Level: 6.1, ActivitiesCount: 3}},
	}
	h := NewHandler(stub)

	rec := serve(t, h, http.MethodGet, "/tags", "")
	var tags struct {
		Tags []domain.Tag `json:"tags"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&tags); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(tags.Tags) != 6 {
		t.Fatalf("tags = %d, want 6", len(tags.Tags))
	}

	rec = serve(t, h, http.MethodPost, "/tags", `{"name":"Leitura"}`)
	if rec.Code != http.StatusCreated || stub.lastTag != "Leitura" {
		t.Fatalf("create tag status = %d name = %q", rec.Code, stub.lastTag)
	}

	rec = serve(t, h, http.MethodGet, "/stats", "")
	var stats common.StatsView
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if stats.DailyGoal != 6 || stats.Stats.TotalActivities != 9 {
		t.Fatalf("unexpected stats %#v", stats)
	}

	rec = serve(t, h, http.MethodGet, "/commitment_series", "")
	var series struct {
		Series []domain.CommitmentData `json:"series"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&series); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(series.Series) != 1 || series.Series[0].Level != 6.1 {
		t.Fatalf("unexpected series %#v", series.Series)
	}
}

// TestHandlerInsight verifies insight request forwarding.
func TestHandlerInsight(t *testing.T) {
	stub := &stubJournal{insight: common.InsightResult{Date: "2026-02-21", Text: "Bom dia."}}
	rec := serve(t, NewHandler(stub), http.MethodPost, "/insights", `{"date":"2026-02-21","instruction":"seja breve"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if stub.lastInsight.Instruction != "seja breve" {
		t.Fatalf("instruction = %q, want seja breve", stub.lastInsight.Instruction)
	}
}

// TestHandlerErrorMapping verifies structured status mapping for service errors.
func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid request", errors.Join(common.ErrInvalidRequest, errors.New("bad")), http.StatusBadRequest, "invalid_request"},
		{"not found", errors.Join(common.ErrNotFound, errors.New("missing")), http.StatusNotFound, "not_found"},
		{"conflict", errors.Join(common.ErrConflict, errors.New("completed")), http.StatusConflict, "conflict"},
		{"unauthenticated", common.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"unavailable", common.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"persistence", common.ErrPersistence, http.StatusInternalServerError, "persistence_failed"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewHandler(&stubJournal{err: tt.err}), http.MethodPost, "/days/2026-02-21/complete", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeEnvelope(t, rec).Error.Code; got != tt.wantCode {
				t.Fatalf("error.code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

// TestHandlerMethodNotAllowed verifies structured 405 responses with Allow headers.
func TestHandlerMethodNotAllowed(t *testing.T) {
	rec := serve(t, NewHandler(&stubJournal{}), http.MethodPatch, "/days", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := rec.Header().Get("Allow"); got != "GET, POST" {
		t.Fatalf("Allow = %q, want GET, POST", got)
	}
	if got := decodeEnvelope(t, rec).Error.Code; got != "method_not_allowed" {
		t.Fatalf("error.code = %q, want method_not_allowed", got)
	}
}

// TestHandlerRejectsMalformedBodies verifies strict decoding failures.
func TestHandlerRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"unknown field":    `{"start_time":"09:00","bogus":1}`,
		"trailing content": `{"start_time":"09:00"} {}`,
		"not json":         `nope`,
		"empty":            ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubJournal{}
			req := httptest.NewRequest(http.MethodPost, "/days/2026-02-21/activities", strings.NewReader(body))
			rec := httptest.NewRecorder()
			NewHandler(stub).ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if stub.lastAct.StartTime != "" {
				t.Fatal("service should not be called for malformed bodies")
			}
		})
	}
}

// TestHandlerUnknownRoute verifies JSON 404 for unmatched paths.
func TestHandlerUnknownRoute(t *testing.T) {
	rec := serve(t, NewHandler(&stubJournal{}), http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := decodeEnvelope(t, rec).Error.Code; got != "not_found" {
		t.Fatalf("error.code = %q, want not_found", got)
	}
}
