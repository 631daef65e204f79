package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estategraph/server/internal/catalog"
	"estategraph/server/internal/graphql"
	"estategraph/server/internal/insight"
	"estategraph/server/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, req graphql.Request) *graphql.Response {
	args := m.Called(ctx, req)
	return args.Get(0).(*graphql.Response)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newServer(t *testing.T, opts ...Option) (*gin.Engine, *memory.Store) {
	t.Helper()
	logger := quietLogger()
	s := memory.New(logger)
	engine := insight.NewEngine(s, logger)
	svc := catalog.NewService(s, logger)
	exec := graphql.NewExecutor(graphql.NewResolver(s, engine, svc), logger)
	return NewRouter(NewHandler(exec, s, logger, opts...), nil), s
}

type body struct {
	Data   map[string]interface{}   `json:"data"`
	Errors []map[string]interface{} `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	return b
}

func errorCode(e map[string]interface{}) string {
	ext, _ := e["extensions"].(map[string]interface{})
	code, _ := ext["code"].(string)
	return code
}

func post(router http.Handler, path, payload string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestPostMutationThenQuery(t *testing.T) {
	router, _ := newServer(t)

	w := post(router, "/", `{"query":"mutation($in: AgentInput!) { addAgent(input: $in) { _id fullName } }","variables":{"in":{"fullName":"Ann Agent","agencyName":"Northside"}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b := decode(t, w)
	require.Empty(t, b.Errors)
	created := b.Data["addAgent"].(map[string]interface{})
	assert.Equal(t, "Ann Agent", created["fullName"])

	w = post(router, "/", `{"query":"{ agentProfiles { fullName agencyName } }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	b = decode(t, w)
	agents := b.Data["agentProfiles"].([]interface{})
	require.Len(t, agents, 1)
	assert.Equal(t, "Northside", agents[0].(map[string]interface{})["agencyName"])
}

func TestPostRejectsMalformedBody(t *testing.T) {
	router, _ := newServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `query { geoZones { _id } }`},
		{name: "empty query", payload: `{"query":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(router, "/", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			b := decode(t, w)
			require.Len(t, b.Errors, 1)
			assert.Equal(t, graphql.CodeBadRequest, errorCode(b.Errors[0]))
		})
	}
}

func TestPostValidationFailureIsBadRequest(t *testing.T) {
	router, _ := newServer(t)

	w := post(router, "/", `{"query":"{ geoZones { nope } }"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), `"data"`)
	b := decode(t, w)
	require.NotEmpty(t, b.Errors)
	assert.Equal(t, graphql.CodeValidationFailed, errorCode(b.Errors[0]))
}

func TestPostFieldErrorKeepsStatusOK(t *testing.T) {
	router, _ := newServer(t)

	w := post(router, "/", `{"query":"{ estateValue(propertyId: \"missing\") { estimatedValue } }"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	b := decode(t, w)
	assert.Contains(t, b.Data, "estateValue")
	assert.Nil(t, b.Data["estateValue"])
	require.Len(t, b.Errors, 1)
	assert.Equal(t, graphql.CodeNotFound, errorCode(b.Errors[0]))
}

func TestGetQuery(t *testing.T) {
	router, _ := newServer(t)

	params := url.Values{}
	params.Set("query", `query Zones($id: ID!) { geoZone(id: $id) { _id } geoZones { _id } __typename }`)
	params.Set("operationName", "Zones")
	params.Set("variables", `{"id":"unknown"}`)

	w := get(router, "/?"+params.Encode())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b := decode(t, w)
	assert.Empty(t, b.Errors)
	assert.Nil(t, b.Data["geoZone"])
	assert.Equal(t, []interface{}{}, b.Data["geoZones"])
	assert.Equal(t, "Query", b.Data["__typename"])
}

func TestGetRejectsMutation(t *testing.T) {
	router, s := newServer(t)

	params := url.Values{}
	params.Set("query", `mutation { addAgent(input: { fullName: "Sneaky" }) { _id } }`)
	w := get(router, "/?"+params.Encode())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	b := decode(t, w)
	require.Len(t, b.Errors, 1)
	assert.Equal(t, graphql.CodeBadRequest, errorCode(b.Errors[0]))

	agents, err := s.Agents().Find(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestGetRejectsBadVariables(t *testing.T) {
	router, _ := newServer(t)

	params := url.Values{}
	params.Set("query", `{ geoZones { _id } }`)
	params.Set("variables", `[1,2`)
	w := get(router, "/?"+params.Encode())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlayground(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		router, _ := newServer(t, WithPlayground(true))
		w := get(router, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "GraphQL Playground")
	})

	t.Run("disabled", func(t *testing.T) {
		router, _ := newServer(t, WithPlayground(false))
		w := get(router, "/")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCustomPath(t *testing.T) {
	router, _ := newServer(t, WithPath("/graphql"))

	w := post(router, "/graphql", `{"query":"{ geoZones { _id } }"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(router, "/", `{"query":"{ geoZones { _id } }"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedBody   string
	}{
		{name: "healthy", expectedStatus: http.StatusOK, expectedBody: "healthy"},
		{name: "store down", pingErr: errors.New("server selection timeout"), expectedStatus: http.StatusServiceUnavailable, expectedBody: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockHealthChecker)
			checker.On("Ping", mock.Anything).Return(tt.pingErr)
			router := NewRouter(NewHandler(new(MockExecutor), checker, quietLogger()), nil)

			w := get(router, "/health")
			assert.Equal(t, tt.expectedStatus, w.Code)

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.expectedBody, got["status"])
			assert.NotContains(t, w.Body.String(), "server selection timeout")
			checker.AssertExpectations(t)
		})
	}
}

func TestRequestDeadlineReachesExecutor(t *testing.T) {
	executor := new(MockExecutor)
	executor.On("Execute", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 5*time.Second
	}), mock.MatchedBy(func(req graphql.Request) bool {
		return req.Query == "{ geoZones { _id } }" && !req.ReadOnly
	})).Return(&graphql.Response{})

	router := NewRouter(NewHandler(executor, new(MockHealthChecker), quietLogger(), WithTimeout(5*time.Second)), nil)
	post(router, "/", `{"query":"{ geoZones { _id } }"}`)

	executor.AssertExpectations(t)
}

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		router, _ := newServer(t)
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origins only", func(t *testing.T) {
		logger := quietLogger()
		s := memory.New(logger)
		handler := NewHandler(new(MockExecutor), s, logger)
		router := NewRouter(handler, []string{"https://estate.example"})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://estate.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://estate.example", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://elsewhere.example")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
