package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSave(t *testing.T) {
	before := testutil.ToFloat64(saves.WithLabelValues("failure"))
	RecordSave(false, 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(saves.WithLabelValues("failure")))

	before = testutil.ToFloat64(saves.WithLabelValues("success"))
	RecordSave(true, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(saves.WithLabelValues("success")))
}

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := httpRequests.WithLabelValues("GET", "/api/projects/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Zero(t, testutil.ToFloat64(httpInFlight))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordSnapshotSize(1024)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "easel_store_snapshot_bytes")
}
