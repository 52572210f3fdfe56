package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/service"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	meResult      *dto.UserResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock QueueService ──

type mockQueueService struct {
	createResult     *dto.QueueEntryResponse
	createErr        error
	getResult        *dto.QueueEntryResponse
	getErr           error
	listResult       []dto.QueueEntryResponse
	listErr          error
	transitionResult *dto.QueueEntryResponse
	transitionErr    error
	lastTransition   *dto.TransitionRequest
}

func (m *mockQueueService) Create(_ context.Context, _ *dto.CreateQueueRequest) (*dto.QueueEntryResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockQueueService) GetByID(_ context.Context, _ string) (*dto.QueueEntryResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockQueueService) List(_ context.Context, _ *dto.ListQueueRequest) ([]dto.QueueEntryResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockQueueService) Transition(_ context.Context, _ string, req *dto.TransitionRequest) (*dto.QueueEntryResponse, error) {
	m.lastTransition = req
	return m.transitionResult, m.transitionErr
}

// ── Mock AnalyticsService ──

type mockAnalyticsService struct {
	chartsResult  *dto.ChartsResponse
	chartsErr     error
	summaryResult *dto.DashboardSummaryResponse
	summaryErr    error
}

func (m *mockAnalyticsService) Charts(_ context.Context, _ string) (*dto.ChartsResponse, error) {
	return m.chartsResult, m.chartsErr
}
func (m *mockAnalyticsService) Summary(_ context.Context) (*dto.DashboardSummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}
func (m *mockAnalyticsService) Subscribe(_ context.Context) (<-chan struct{}, func()) {
	ch := make(chan struct{})
	close(ch)
	return ch, func() {}
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportQueueHistory(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func doJSON(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doJSON(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "pharmacist",
		Password: "secret-123",
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doJSON(r, "POST", "/auth/login", bytes.NewReader([]byte("invalid json")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doJSON(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "pharmacist",
		Password: "wrong",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidRefreshToken})

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	w := doJSON(r, "POST", "/auth/refresh", jsonBody(dto.RefreshRequest{
		RefreshToken: "stale-token",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	// 未经过 JWTAuth 中间件，上下文中无 user_id
	r := gin.New()
	r.GET("/auth/me", h.Me)
	w := doJSON(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// QueueHandler Tests
// ═══════════════════════════════════════════════════════════

func TestQueueHandler_CreateQueue_Success(t *testing.T) {
	mock := &mockQueueService{
		createResult: &dto.QueueEntryResponse{
			ID:     "q-1",
			Family: "pharmacy",
			Code:   "A007",
			Number: 7,
			Status: "WAITING",
		},
	}
	h := NewQueueHandler(mock)

	r := gin.New()
	r.POST("/queues", h.CreateQueue)
	w := doJSON(r, "POST", "/queues", jsonBody(dto.CreateQueueRequest{
		Family:   "pharmacy",
		TypeCode: "GEN",
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestQueueHandler_CreateQueue_MissingFields(t *testing.T) {
	h := NewQueueHandler(&mockQueueService{})

	r := gin.New()
	r.POST("/queues", h.CreateQueue)
	w := doJSON(r, "POST", "/queues", jsonBody(map[string]string{"family": "pharmacy"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestQueueHandler_CreateQueue_TypeDisabled(t *testing.T) {
	h := NewQueueHandler(&mockQueueService{createErr: service.ErrQueueTypeDisabled})

	r := gin.New()
	r.POST("/queues", h.CreateQueue)
	w := doJSON(r, "POST", "/queues", jsonBody(dto.CreateQueueRequest{
		Family:   "pharmacy",
		TypeCode: "OLD",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12004 {
		t.Errorf("expected error code 12004, got %d", resp.Code)
	}
}

func TestQueueHandler_GetQueue_NotFound(t *testing.T) {
	h := NewQueueHandler(&mockQueueService{getErr: service.ErrQueueNotFound})

	r := gin.New()
	r.GET("/queues/:id", h.GetQueue)
	w := doJSON(r, "GET", "/queues/missing-id", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12001 {
		t.Errorf("expected error code 12001, got %d", resp.Code)
	}
}

func TestQueueHandler_Transition_Success(t *testing.T) {
	sp := "sp-1"
	mock := &mockQueueService{
		transitionResult: &dto.QueueEntryResponse{
			ID:             "q-1",
			Status:         "ACTIVE",
			ServicePointID: &sp,
		},
	}
	h := NewQueueHandler(mock)

	r := gin.New()
	r.POST("/queues/:id/transition", h.TransitionQueue)
	w := doJSON(r, "POST", "/queues/q-1/transition", jsonBody(dto.TransitionRequest{
		Action:         "call",
		ServicePointID: &sp,
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastTransition == nil || mock.lastTransition.Action != "call" {
		t.Error("期望 action=call 被传递到 service 层")
	}
}

func TestQueueHandler_Transition_InvalidState(t *testing.T) {
	h := NewQueueHandler(&mockQueueService{transitionErr: service.ErrInvalidTransition})

	r := gin.New()
	r.POST("/queues/:id/transition", h.TransitionQueue)
	w := doJSON(r, "POST", "/queues/q-1/transition", jsonBody(dto.TransitionRequest{
		Action: "complete",
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12005 {
		t.Errorf("expected error code 12005, got %d", resp.Code)
	}
}

func TestQueueHandler_Transition_AllocationExhausted(t *testing.T) {
	h := NewQueueHandler(&mockQueueService{createErr: service.ErrAllocationExhausted})

	r := gin.New()
	r.POST("/queues", h.CreateQueue)
	w := doJSON(r, "POST", "/queues", jsonBody(dto.CreateQueueRequest{
		Family:   "pharmacy",
		TypeCode: "GEN",
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12009 {
		t.Errorf("expected error code 12009, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AnalyticsHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAnalyticsHandler_GetCharts_Success(t *testing.T) {
	mock := &mockAnalyticsService{
		chartsResult: &dto.ChartsResponse{
			TimeFrame:  "day",
			WaitTime:   []dto.WaitTimeBucket{{Time: "09:00", Pharmacy: 12}},
			Throughput: []dto.ThroughputBucket{{Time: "09:00", Pharmacy: 3}},
		},
	}
	h := NewAnalyticsHandler(mock)

	r := gin.New()
	r.GET("/analytics/charts", h.GetCharts)
	w := doJSON(r, "GET", "/analytics/charts?time_frame=day", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAnalyticsHandler_GetCharts_BadTimeFrame(t *testing.T) {
	h := NewAnalyticsHandler(&mockAnalyticsService{})

	r := gin.New()
	r.GET("/analytics/charts", h.GetCharts)
	w := doJSON(r, "GET", "/analytics/charts?time_frame=year", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAnalyticsHandler_GetSummary_Success(t *testing.T) {
	mock := &mockAnalyticsService{
		summaryResult: &dto.DashboardSummaryResponse{
			Families: []dto.FamilySummary{{Family: "pharmacy", TotalToday: 5}},
		},
	}
	h := NewAnalyticsHandler(mock)

	r := gin.New()
	r.GET("/analytics/summary", h.GetSummary)
	w := doJSON(r, "GET", "/analytics/summary", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportQueueHistory_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "队列历史_2026-09-01_2026-09-30.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/queues", h.ExportQueueHistory)
	w := doJSON(r, "GET", "/export/queues?from=2026-09-01&to=2026-09-30", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	disposition := w.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "filename*=UTF-8''") {
		t.Errorf("期望 Content-Disposition 含 UTF-8 文件名，实际 %s", disposition)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Error("期望响应体为导出文件内容")
	}
}

func TestExportHandler_ExportQueueHistory_MissingRange(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	r := gin.New()
	r.GET("/export/queues", h.ExportQueueHistory)
	w := doJSON(r, "GET", "/export/queues?from=2026-09-01", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_ExportQueueHistory_InvalidRange(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportInvalidRange})

	r := gin.New()
	r.GET("/export/queues", h.ExportQueueHistory)
	w := doJSON(r, "GET", "/export/queues?from=2026-09-30&to=2026-09-01", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 19001 {
		t.Errorf("expected error code 19001, got %d", resp.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
