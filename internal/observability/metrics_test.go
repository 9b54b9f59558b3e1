package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/gigs/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/gigs/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/gigs/:id", "204")))
}

func TestTrackerAndDocuments(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	err := m.Track("sheets").End(errors.New("boom"))
	assert.Error(t, err)
	assert.NoError(t, m.Track("sheets").End(nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("sheets", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("sheets", "success")))

	m.DocumentIssued("Invoice", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("Invoice", "false")))

	var nilMetrics *Metrics
	nilMetrics.DocumentIssued("Invoice", true)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
