package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	var got reservation.Actor
	var salon uint

	r := gin.New()
	r.GET("/x", AuthMiddleware(secret), func(c *gin.Context) {
		got = Actor(c)
		salon = SalonID(c)
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"unknown role", "Bearer " + sign(t, jwt.MapClaims{"sub": 1, "salonId": 2, "role": "root"}), http.StatusUnauthorized},
		{"no salon", "Bearer " + sign(t, jwt.MapClaims{"sub": 1, "role": "owner"}), http.StatusUnauthorized},
		{"customer", "Bearer " + sign(t, jwt.MapClaims{"sub": 5, "salonId": 2, "role": "customer", "customerId": 42}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	assert.Equal(t, uint(2), salon)
	assert.Equal(t, uint(5), got.UserID)
	assert.Equal(t, reservation.RoleCustomer, got.Role)
	require.NotNil(t, got.CustomerID)
	assert.Equal(t, uint(42), *got.CustomerID)
}

func TestAuthMiddleware_RejectsOtherAlgorithms(t *testing.T) {
	r := gin.New()
	r.GET("/x", AuthMiddleware(secret), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 1, "salonId": 1, "role": "owner"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	r.GET("/x",
		func(c *gin.Context) { c.Set(ContextUserRole, c.Query("role")) },
		RequireRoles(reservation.RoleOwner),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	for role, want := range map[string]int{"owner": http.StatusOK, "staff": http.StatusForbidden} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?role="+role, nil))
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(2, zap.NewNop())

	r := gin.New()
	r.POST("/redeem",
		func(c *gin.Context) {
			c.Set(ContextSalonID, uint(1))
			c.Set(ContextUserID, uint(len(c.Query("u"))))
		},
		rl.Middleware(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	hit := func(user string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/redeem?u="+user, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("a"))
	assert.Equal(t, http.StatusOK, hit("a"))
	assert.Equal(t, http.StatusTooManyRequests, hit("a"))

	// another user has its own bucket
	assert.Equal(t, http.StatusOK, hit("bb"))
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop(), nil))
	r.GET("/x", func(c *gin.Context) {
		assert.NotNil(t, Logger(c, nil))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(HeaderRequestID))
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://salon.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://salon.example", w.Header().Get("Access-Control-Allow-Origin"))
}
