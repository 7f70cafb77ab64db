package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	ObserveFetch("en", "ok", 120*time.Millisecond)
	AddBatch()
	SetMissing(3)
	AddComposed("ok")
	AddInsert("batch", "ok")
}

func TestHandlerServesCollectors(t *testing.T) {
	Init()
	ObserveFetch("he", "miss", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "pealim_harvest_pages_total")
}
