package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/therapy-students-api/internal/models"
	"github.com/noah-isme/therapy-students-api/internal/service"
	appErrors "github.com/noah-isme/therapy-students-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/students/:id", handlers...)
	return r
}

func serve(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/1", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTRequiresBearerToken(t *testing.T) {
	validator := &stubValidator{claims: &models.JWTClaims{Role: models.RoleTherapist}}
	r := newTestRouter(JWT(validator))

	w := serve(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = serve(r, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "bearer token-123")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "token-123", validator.seen)
}

func TestJWTPropagatesValidationError(t *testing.T) {
	r := newTestRouter(JWT(&stubValidator{err: appErrors.Clone(appErrors.ErrForbidden, "account is inactive")}))
	w := serve(r, "Bearer token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}

func TestRequireRoles(t *testing.T) {
	therapist := &stubValidator{claims: &models.JWTClaims{Role: models.RoleTherapist}}
	parent := &stubValidator{claims: &models.JWTClaims{Role: models.RoleParent}}

	w := serve(newTestRouter(JWT(therapist), RequireRoles(models.RoleTherapist)), "Bearer t")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(newTestRouter(JWT(parent), RequireRoles(models.RoleTherapist)), "Bearer t")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newTestRouter(RequireRoles(models.RoleTherapist)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	metrics := service.NewMetricsService()
	w := serve(newTestRouter(Metrics(metrics)), "")
	require.Equal(t, http.StatusNoContent, w.Code)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" && label.GetValue() == "/students/:id" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}

func TestMetricsCollapsesUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/students", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scan/%d", i), nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{unmatchedRoute: 20}, paths)
}

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	validator := &stubValidator{claims: &models.JWTClaims{Role: models.RoleTherapist, RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}}

	w := serve(newTestRouter(JWT(validator), Audit(zap.New(core), "enroll", "student")), "Bearer t")
	require.Equal(t, http.StatusNoContent, w.Code)

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "enroll", fields["action"])
	assert.Equal(t, "7", fields["actor"])
	assert.Equal(t, "/students/:id", fields["path"])
}

func TestAuditSkipsFailures(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := serve(newTestRouter(JWT(&stubValidator{err: appErrors.ErrUnauthorized}), Audit(zap.New(core), "enroll", "student")), "Bearer t")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, logs.Len())
}
