package serve

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetGroups(t *testing.T) {
	h := NewProgressHandler(nil, []string{"ai-club", "reading"})

	rec := httptest.NewRecorder()
	h.GetGroups(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp GroupsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"ai-club", "reading"}, resp.Groups)
}

func TestGetProgressRequiresGroup(t *testing.T) {
	h := NewProgressHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.GetProgress(rec, httptest.NewRequest(http.MethodGet, "/api/progress", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
