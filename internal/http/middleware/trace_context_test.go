package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rango-rater-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID == "" {
		t.Fatalf("unexpected trace data: %+v", seen)
	}
	if got := rec.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("request id header: got=%q", got)
	}
	if got := rec.Header().Get(headerTraceID); got != seen.TraceID {
		t.Fatalf("trace id header: got=%q want=%q", got, seen.TraceID)
	}
}
