package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"estategraph/server/internal/catalog"
	"estategraph/server/internal/store"
)

func TestDateUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected time.Time
		wantErr  bool
	}{
		{name: "rfc3339 millis", input: "2024-03-01T09:15:00.250Z", expected: time.Date(2024, 3, 1, 9, 15, 0, 250e6, time.UTC)},
		{name: "no zone", input: "2024-03-01T09:15:00", expected: time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)},
		{name: "calendar date", input: "2024-03-01", expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "millis string", input: "1709251200000", expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "millis from json", input: 1709251200000.0, expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "millis int", input: 1709251200000, expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "words", input: "next tuesday", wantErr: true},
		{name: "boolean", input: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := d.UnmarshalGraphQL(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(time.Time(d)), "got %s", time.Time(d))
		})
	}
}

func TestDateMarshalsInUTC(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	raw, err := json.Marshal(Date(time.Date(2024, 1, 2, 1, 0, 0, 0, berlin)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02T00:00:00.000Z"`, string(raw))

	assert.True(t, Date{}.ImplementsGraphQLType("Date"))
	assert.False(t, Date{}.ImplementsGraphQLType("Time"))
}

func TestJSONScalar(t *testing.T) {
	var in JSON
	require.NoError(t, in.UnmarshalGraphQL(map[string]interface{}{"type": "Polygon"}))
	assert.Equal(t, map[string]interface{}{"type": "Polygon"}, in.Value)

	stored := JSON{Value: bson.D{{Key: "type", Value: "Polygon"}, {Key: "coordinates", Value: bson.A{1.0}}}}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Polygon","coordinates":[1]}`, string(raw))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{name: "not found", err: fmt.Errorf("estimate value of property x: %w", store.ErrNotFound), code: CodeNotFound},
		{name: "invalid input", err: fmt.Errorf("%w: name is required", catalog.ErrInvalidInput), code: CodeBadUserInput},
		{name: "unavailable", err: store.Unavailable("find", errors.New("dial tcp: refused")), code: CodeStoreUnavailable, message: "Entity store unavailable - please retry"},
		{name: "deadline", err: fmt.Errorf("find: %w", context.DeadlineExceeded), code: CodeDeadlineExceeded},
		{name: "cancelled", err: context.Canceled, code: CodeCancelled},
		{name: "anything else", err: errors.New("boom"), code: CodeInternal, message: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			assert.Equal(t, tt.code, Code(got))
			if tt.message != "" {
				assert.Equal(t, tt.message, got.Message)
			}
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
