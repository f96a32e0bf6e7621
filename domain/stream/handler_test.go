package stream

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTestContext(headerLastEventID, queryLastEventID string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/stream/runs/run-1", nil)
	if headerLastEventID != "" {
		req.Header.Set("Last-Event-ID", headerLastEventID)
	}
	if queryLastEventID != "" {
		q := req.URL.Query()
		q.Set("last_event_id", queryLastEventID)
		req.URL.RawQuery = q.Encode()
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParseLastEventIDPrefersHeader(t *testing.T) {
	c := newTestContext("42", "7")
	assert.Equal(t, int64(42), parseLastEventID(c))
}

func TestParseLastEventIDFallsBackToQuery(t *testing.T) {
	c := newTestContext("", "7")
	assert.Equal(t, int64(7), parseLastEventID(c))
}

func TestParseLastEventIDDefaultsToZero(t *testing.T) {
	c := newTestContext("", "")
	assert.Equal(t, int64(0), parseLastEventID(c))

	c = newTestContext("not-a-number", "")
	assert.Equal(t, int64(0), parseLastEventID(c))
}
