package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/corewire/ftsearch/internal/logging"
	"github.com/corewire/ftsearch/internal/registry"
	"github.com/corewire/ftsearch/model"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	a := New(registry.New(), logging.New())
	return a.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateIndexThenConflict(t *testing.T) {
	router := setupTestRouter()

	rec := doJSON(t, router, http.MethodPut, "/index/a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/index/a", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStatsOnMissingIndex(t *testing.T) {
	router := setupTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/index/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkAddThenStatsThenSearch(t *testing.T) {
	router := setupTestRouter()
	doJSON(t, router, http.MethodPut, "/index/a", nil)

	rec := doJSON(t, router, http.MethodPost, "/index/a", bulkDocsRequest{
		Fields: []string{"title"},
		Items: []model.Document{
			{"_id": "1", "title": "Hello World"},
			{"_id": "2", "title": "Hello"},
		},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/index/a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(2), stats["items_count"])

	rec = doJSON(t, router, http.MethodPost, "/index/a/search?q=hello", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	items, ok := result["items"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, items, 2)
}

func TestSearchExplicitTakeZeroReturnsNoItems(t *testing.T) {
	router := setupTestRouter()
	doJSON(t, router, http.MethodPut, "/index/a", nil)
	doJSON(t, router, http.MethodPost, "/index/a", bulkDocsRequest{
		Fields: []string{"title"},
		Items: []model.Document{
			{"_id": "1", "title": "Hello"},
			{"_id": "2", "title": "Hello"},
		},
	})

	rec := doJSON(t, router, http.MethodPost, "/index/a/search?q=hello&take=0", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	items, ok := result["items"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, items, 0)
	assert.Equal(t, float64(2), result["max_items"])
}

func TestDestroyAllClearsEverything(t *testing.T) {
	router := setupTestRouter()
	doJSON(t, router, http.MethodPut, "/index/a", nil)
	doJSON(t, router, http.MethodPut, "/index/b", nil)

	rec := doJSON(t, router, http.MethodDelete, "/index/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/index/a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
