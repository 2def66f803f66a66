package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBusinessCounters(t *testing.T) {
	m := New()
	m.InvoiceCreated()
	m.InvoiceCreated()
	m.InvoiceNumberCollision()
	m.PropagationFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invoicesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invoiceNumberConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.propagationFailures))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.InvoiceCreated() })
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/3", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/ping/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "print_erp_http_requests_total")
}
