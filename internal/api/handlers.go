package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/sirupsen/logrus"

	"estategraph/server/internal/graphql"
)

const operationKey = "graphql_operation"

// Executor runs GraphQL requests.
type Executor interface {
	Execute(ctx context.Context, req graphql.Request) *graphql.Response
}

// HealthChecker reports whether the entity store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	executor   Executor
	health     HealthChecker
	logger     *logrus.Logger
	path       string
	playground bool
	timeout    time.Duration

	playgroundPage http.HandlerFunc
}

type Option func(*Handler)

// WithPath sets the GraphQL endpoint path. Defaults to "/".
func WithPath(path string) Option {
	return func(h *Handler) { h.path = path }
}

// WithPlayground serves GraphQL Playground on GET requests without a query.
func WithPlayground(enabled bool) Option {
	return func(h *Handler) { h.playground = enabled }
}

// WithTimeout sets the deadline of every request. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

func NewHandler(executor Executor, health HealthChecker, logger *logrus.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	h := &Handler{
		executor: executor,
		health:   health,
		logger:   logger,
		path:     "/",
	}
	for _, opt := range opts {
		opt(h)
	}
	h.playgroundPage = playground.Handler("GraphQL Playground", h.path)
	return h
}

func badRequest(c *gin.Context, message string) {
	e := graphql.RequestError(graphql.CodeBadRequest, "%s", message)
	c.JSON(http.StatusBadRequest, gin.H{"errors": []*gqlerrors.QueryError{e}})
}

// PostGraphQL executes a JSON encoded request body.
func (h *Handler) PostGraphQL(c *gin.Context) {
	var req graphql.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse GraphQL request body")
		badRequest(c, "Request body must be a JSON object with a query")
		return
	}
	h.execute(c, req)
}

// GetGraphQL executes a query passed as URL parameters. Mutations are
// rejected. Without a query the playground is served when enabled.
func (h *Handler) GetGraphQL(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		if h.playground {
			h.playgroundPage(c.Writer, c.Request)
			return
		}
		badRequest(c, "Missing query parameter")
		return
	}

	req := graphql.Request{
		Query:         query,
		OperationName: c.Query("operationName"),
		ReadOnly:      true,
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			h.logger.WithError(err).Warn("Failed to parse GraphQL variables")
			badRequest(c, "Variables must be a JSON object")
			return
		}
	}
	h.execute(c, req)
}

func (h *Handler) execute(c *gin.Context, req graphql.Request) {
	if req.Query == "" {
		badRequest(c, "Missing query")
		return
	}
	c.Set(operationKey, req.OperationName)

	resp := h.executor.Execute(c.Request.Context(), req)

	status := http.StatusOK
	if !resp.Executed() {
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}

// Health pings the entity store.
func (h *Handler) Health(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "entity store unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Timeout bounds the request context by the configured deadline.
func (h *Handler) Timeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger writes one entry per request.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if op, ok := c.Get(operationKey); ok && op != "" {
			fields["operation"] = op
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
