package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/haul-slips/internal/domain"
	"github.com/pkordes/haul-slips/internal/handler"
)

// mockSlipServicer is a test double for handler.SlipServicer.
// Set only the method fields your test needs.
type mockSlipServicer struct {
	create    func(ctx context.Context, sub domain.Submission) (domain.Slip, error)
	list      func(ctx context.Context, p domain.ListParams) ([]domain.Slip, error)
	exportCSV func(ctx context.Context) ([]byte, error)
}

func (m *mockSlipServicer) Create(ctx context.Context, sub domain.Submission) (domain.Slip, error) {
	return m.create(ctx, sub)
}
func (m *mockSlipServicer) List(ctx context.Context, p domain.ListParams) ([]domain.Slip, error) {
	return m.list(ctx, p)
}
func (m *mockSlipServicer) ExportCSV(ctx context.Context) ([]byte, error) {
	return m.exportCSV(ctx)
}

// mockLookupServicer is a test double for handler.LookupServicer.
type mockLookupServicer struct {
	clients  func(ctx context.Context) ([]domain.LookupItem, error)
	projects func(ctx context.Context, clientID string) ([]domain.LookupItem, error)
}

func (m *mockLookupServicer) Clients(ctx context.Context) ([]domain.LookupItem, error) {
	return m.clients(ctx)
}
func (m *mockLookupServicer) Projects(ctx context.Context, clientID string) ([]domain.LookupItem, error) {
	return m.projects(ctx, clientID)
}

// compile-time checks: mocks must satisfy the handler interfaces.
var (
	_ handler.SlipServicer   = (*mockSlipServicer)(nil)
	_ handler.LookupServicer = (*mockLookupServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// errorBody mirrors the JSON error envelope written by the handlers.
type errorBody struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Fields  []string `json:"fields"`
	} `json:"error"`
}

func newHTTPHandler(slips handler.SlipServicer, lookups handler.LookupServicer) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(slips, lookups, log).Routes()
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func slipFixture() domain.Slip {
	ts := time.Date(2024, 5, 1, 14, 3, 7, 0, time.UTC)
	return domain.Slip{
		ID:            "3f0c2a1e-7d2b-4d0e-9a55-0c1b2d3e4f50",
		Date:          "2024-05-01",
		Driver:        "Dana",
		TruckNumber:   "T-12",
		Job:           "Main St",
		HaulTo:        "Dump A",
		StartTime:     "07:00",
		EndTime:       "15:30",
		Material:      "Gravel",
		SignatureName: "Dana R",
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}
