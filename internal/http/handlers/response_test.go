package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/boom", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-500" || resp.Code != ErrCodeInternal || resp.Message != "kaboom" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), "api error") {
		t.Fatalf("expected error log, got %q", buf.String())
	}
}

func Test_fail_4xx_NotLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) { c.Set("logger", &logger); c.Next() })
	r.GET("/nf", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nf", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx must not log, got %q", buf.String())
	}
}

func Test_failErr_RecordsGinError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var recorded int
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = len(c.Errors)
	})
	r.GET("/x", func(c *gin.Context) { failErr(c, errors.New("connection reset")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusInternalServerError || recorded != 1 {
		t.Fatalf("status=%d recorded=%d", w.Code, recorded)
	}
	if strings.Contains(w.Body.String(), "connection reset") {
		t.Fatalf("storage error text leaked: %s", w.Body.String())
	}
}

func Test_okCached_StableETag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v", func(c *gin.Context) { okCached(c, map[string]int{"vote_score": 3}) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/v", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/v", nil))

	e1, e2 := w1.Header().Get("ETag"), w2.Header().Get("ETag")
	if e1 == "" || e1 != e2 || !strings.HasPrefix(e1, `W/"`) {
		t.Fatalf("etags unstable or malformed: %q %q", e1, e2)
	}
	if w1.Body.String() != `{"vote_score":3}` {
		t.Fatalf("body = %s", w1.Body.String())
	}
}
