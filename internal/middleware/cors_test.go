package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/plinko/internal/config"
)

func wsRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestWebSocketCORSCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dev := &config.Config{Environment: "development"}
	prod := &config.Config{Environment: "production", FrontendURL: "https://plinko.example.com"}

	tests := []struct {
		name   string
		cfg    *config.Config
		origin string
		code   int
	}{
		{"dev localhost", dev, "http://localhost:3000", http.StatusOK},
		{"dev no origin", dev, "", http.StatusOK},
		{"dev foreign", dev, "https://evil.example.com", http.StatusForbidden},
		{"prod frontend", prod, "https://plinko.example.com", http.StatusOK},
		{"prod localhost", prod, "http://localhost:5173", http.StatusForbidden},
		{"prod no origin", prod, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/ws", WebSocketCORSCheck(tt.cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, wsRequest(tt.origin))
			if w.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Environment: "production", FrontendURL: "https://plinko.example.com"}

	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://plinko.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://plinko.example.com" {
		t.Errorf("expected origin echoed, got %q", got)
	}
}
