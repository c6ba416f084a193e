package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func TestSignAndParse(t *testing.T) {
	s := NewSigner("secret", time.Hour)

	token, exp, err := s.Sign("abc-123")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Error("expected expiry in the future")
	}

	id, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id != "abc-123" {
		t.Errorf("expected abc-123, got %s", id)
	}
}

func TestParseRejects(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	good, _, _ := s.Sign("abc")

	other, _, _ := NewSigner("other", time.Hour).Sign("abc")

	expired := NewSigner("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Sign("abc")

	noSession, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"expired":      stale,
		"no session":   noSession,
		"truncated":    good[:len(good)-4],
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewSigner("secret", time.Hour)
	token, _, _ := s.Sign("sess-1")

	r := gin.New()
	r.GET("/x", s.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("session_id"))
	})

	tests := []struct {
		name   string
		target string
		header string
		code   int
	}{
		{"bearer", "/x", "Bearer " + token, http.StatusOK},
		{"query", "/x?token=" + token, "", http.StatusOK},
		{"missing", "/x", "", http.StatusUnauthorized},
		{"bad", "/x?token=nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, w.Code)
			}
			if tt.code == http.StatusOK && w.Body.String() != "sess-1" {
				t.Errorf("expected session_id sess-1, got %q", w.Body.String())
			}
		})
	}
}
