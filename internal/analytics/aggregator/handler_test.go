package aggregator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	n, err := parseLimit("")
	require.NoError(t, err)
	assert.Equal(t, defaultHistory, n)

	n, err = parseLimit("10")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = parseLimit("100000")
	require.NoError(t, err)
	assert.Equal(t, maxHistory, n)

	for _, bad := range []string{"0", "-3", "ten"} {
		_, err := parseLimit(bad)
		assert.Error(t, err, bad)
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	s := NewStore(nil, 0)
	rec := httptest.NewRecorder()
	s.History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history?limit=x", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid syntax")
}
