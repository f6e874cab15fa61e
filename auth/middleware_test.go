package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(issuer *TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", RequireToken(issuer), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UsernameKey))
	})
	return router
}

func TestRequireToken(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := newProtectedRouter(issuer)
	token, err := issuer.Generate("alice")
	req.NoError(err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"No header", "", http.StatusUnauthorized, ""},
		{"Not a bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"Invalid token", "Bearer abc", http.StatusUnauthorized, ""},
		{"Valid token", "Bearer " + token, http.StatusOK, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, r)

			req.Equal(tt.status, w.Code)
			if tt.body != "" {
				req.Equal(tt.body, w.Body.String())
			}
		})
	}
}
