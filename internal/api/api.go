// Package api wires the HTTP transport: gin routes under /index that
// translate JSON requests into registry/pipeline calls and JSON responses,
// following the teacher's APIError/SendError convention adapted to the
// {status, message, error} envelope this service's transport contract
// specifies.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corewire/ftsearch/internal/apperr"
	"github.com/corewire/ftsearch/internal/filter"
	"github.com/corewire/ftsearch/internal/invindex"
	"github.com/corewire/ftsearch/internal/pipeline"
	"github.com/corewire/ftsearch/internal/registry"
	"github.com/corewire/ftsearch/model"
)

const version = "1.0.0"

// maxBodyBytes bounds a single request body. The service is expected to
// accept large bulk-ingestion payloads, so the limit is generous rather
// than tight.
const maxBodyBytes = 8 << 30 // 8 GiB

// API holds the dependencies request handlers close over.
type API struct {
	registry *registry.Registry
	log      *slog.Logger
}

// New builds an API bound to reg, logging through log.
func New(reg *registry.Registry, log *slog.Logger) *API {
	return &API{registry: reg, log: log}
}

// Router assembles a gin.Engine with every route from spec.md §6 mounted,
// plus request-size-limit, CORS, and request-id middleware.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestSizeLimitMiddleware(maxBodyBytes))
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())

	r.GET("/", a.handleVersion)

	idx := r.Group("/index")
	{
		idx.PUT("/:name", a.handleCreate)
		idx.GET("/:name", a.handleStats)
		idx.POST("/:name", a.handleBulkAdd)
		idx.PATCH("/:name", a.handleBulkUpdate)
		idx.DELETE("/:name", a.handleBulkRemove)
		idx.POST("/:name/search", a.handleSearch)
		idx.DELETE("/:name/delete", a.handleDestroy)
		idx.DELETE("/:name/clear", a.handleClear)
		idx.DELETE("/", a.handleDestroyAll)
	}

	return r
}

func requestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("request_id", uuid.New().String())
		c.Next()
	}
}

// envelope is the {status, message, error?} shape every JSON response
// shares.
type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   bool   `json:"error,omitempty"`
}

func sendOK(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Status: status, Message: message})
}

func sendErr(c *gin.Context, log *slog.Logger, err error) {
	requestID, _ := c.Get("request_id")

	var status int
	switch {
	case errors.Is(err, apperr.ErrIndexNotFound), errors.Is(err, apperr.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrIndexExists):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrMalformedInput):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}

	log.Error("request failed", "request_id", requestID, "error", err.Error(), "status", status)
	c.JSON(status, envelope{Status: status, Message: err.Error(), Error: true})
}

// logMutation emits the one structured line every mutating registry/index
// operation owes an operator: which index, which operation, how many
// documents it touched, and how long it took.
func logMutation(log *slog.Logger, index, operation string, docCount int, start time.Time) {
	log.Info("index mutated",
		"index", index,
		"operation", operation,
		"doc_count", docCount,
		"duration", time.Since(start),
	)
}

func (a *API) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (a *API) handleCreate(c *gin.Context) {
	start := time.Now()
	name := c.Param("name")
	if err := a.registry.Create(name); err != nil {
		sendErr(c, a.log, err)
		return
	}
	logMutation(a.log, name, "create_index", 0, start)
	sendOK(c, http.StatusOK, "index created")
}

func (a *API) handleStats(c *gin.Context) {
	name := c.Param("name")
	index, err := a.registry.Get(name)
	if err != nil {
		sendErr(c, a.log, err)
		return
	}
	itemsCount, tokensCount := index.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":       http.StatusOK,
		"items_count":  itemsCount,
		"tokens_count": tokensCount,
	})
}

type bulkDocsRequest struct {
	Items  []model.Document `json:"items"`
	Fields []string         `json:"fields"`
}

func (a *API) handleBulkAdd(c *gin.Context) {
	a.bulkApply(c, "add", func(index *invindex.Index, doc model.Document, fields []string) error {
		return index.Add(doc, fields)
	})
}

func (a *API) handleBulkUpdate(c *gin.Context) {
	a.bulkApply(c, "update", func(index *invindex.Index, doc model.Document, fields []string) error {
		return index.Update(doc, fields)
	})
}

// bulkApply implements the shared add/update batch-processing shape: parse
// the body, resolve the index, apply op to every item in order, and
// fail-fast on the first item that errors (spec.md §7) while reporting how
// much of the batch already committed.
func (a *API) bulkApply(c *gin.Context, operation string, op func(*invindex.Index, model.Document, []string) error) {
	start := time.Now()
	name := c.Param("name")
	index, err := a.registry.Get(name)
	if err != nil {
		sendErr(c, a.log, err)
		return
	}

	var body bulkDocsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		sendErr(c, a.log, apperr.NewMalformedInputError(0, "invalid JSON body: "+err.Error()))
		return
	}

	applied := 0
	var applyErr error
	for i, doc := range body.Items {
		if applyErr = op(index, doc, body.Fields); applyErr != nil {
			if me, ok := applyErr.(*apperr.MalformedInputError); ok {
				me.ItemIndex = i
			}
			break
		}
		applied++
	}

	if applyErr != nil {
		logMutation(a.log, name, operation, applied, start)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": applyErr.Error(),
			"error":   true,
			"applied": applied,
		})
		return
	}

	logMutation(a.log, name, operation, applied, start)
	sendOK(c, http.StatusOK, "batch applied")
}

type bulkRemoveRequest struct {
	Items []string `json:"items"`
}

func (a *API) handleBulkRemove(c *gin.Context) {
	start := time.Now()
	name := c.Param("name")
	index, err := a.registry.Get(name)
	if err != nil {
		sendErr(c, a.log, err)
		return
	}

	var body bulkRemoveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		sendErr(c, a.log, apperr.NewMalformedInputError(0, "invalid JSON body: "+err.Error()))
		return
	}

	removed := 0
	for _, id := range body.Items {
		if index.Remove(id) {
			removed++
		}
	}
	logMutation(a.log, name, "remove", removed, start)
	sendOK(c, http.StatusOK, "documents removed")
}

type searchRequestBody struct {
	Filter   *filter.Tree `json:"filter,omitempty"`
	SortBy   string       `json:"sort_by,omitempty"`
	SortAsc  bool         `json:"sort_asc,omitempty"`
	SortType string       `json:"sort_type,omitempty"`
}

func (a *API) handleSearch(c *gin.Context) {
	name := c.Param("name")
	index, err := a.registry.Get(name)
	if err != nil {
		sendErr(c, a.log, err)
		return
	}

	var body searchRequestBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			sendErr(c, a.log, apperr.NewMalformedInputError(0, "invalid JSON body: "+err.Error()))
			return
		}
	}

	query := c.Query("q")
	skip := queryInt(c, "skip", 0)
	take := queryIntPtr(c, "take")

	result, err := pipeline.Run(index, pipeline.Request{
		Query:    query,
		Filter:   body.Filter,
		SortBy:   body.SortBy,
		SortAsc:  body.SortAsc,
		SortType: body.SortType,
		Skip:     skip,
		Take:     take,
	})
	if err != nil {
		sendErr(c, a.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    http.StatusOK,
		"message":   "search complete",
		"query":     query,
		"items":     result.Items,
		"max_items": result.MaxItems,
		"num_items": result.NumItems,
		"num_pages": result.NumPages,
		"query_id":  uuid.New().String(),
	})
}

func (a *API) handleDestroy(c *gin.Context) {
	start := time.Now()
	name := c.Param("name")
	if err := a.registry.Delete(name); err != nil {
		sendErr(c, a.log, err)
		return
	}
	logMutation(a.log, name, "destroy_index", 0, start)
	sendOK(c, http.StatusOK, "index destroyed")
}

func (a *API) handleClear(c *gin.Context) {
	start := time.Now()
	name := c.Param("name")
	index, err := a.registry.Get(name)
	if err != nil {
		sendErr(c, a.log, err)
		return
	}
	itemsCount, _ := index.Stats()
	index.Clear()
	logMutation(a.log, name, "clear", itemsCount, start)
	sendOK(c, http.StatusOK, "index cleared")
}

func (a *API) handleDestroyAll(c *gin.Context) {
	start := time.Now()
	a.registry.DeleteAll()
	logMutation(a.log, "*", "destroy_all", 0, start)
	sendOK(c, http.StatusOK, "all indexes destroyed")
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	var n int
	for _, r := range raw {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// queryIntPtr parses key as an integer only if the query parameter is
// actually present, returning nil otherwise so the caller can distinguish
// "absent" from an explicit zero rather than coercing both to the same
// default (c.f. queryInt, which cannot make that distinction).
func queryIntPtr(c *gin.Context, key string) *int {
	raw, present := c.GetQuery(key)
	if !present {
		return nil
	}
	var n int
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil
		}
		n = n*10 + int(r-'0')
	}
	return &n
}
