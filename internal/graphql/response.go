package graphql

import (
	"encoding/json"

	gqlerrors "github.com/graph-gophers/graphql-go/errors"
)

// Request is a GraphQL request as posted by clients.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`

	// ReadOnly rejects mutations; used for GET requests.
	ReadOnly bool `json:"-"`
}

// Response is the result of one operation. Data is nil when the request
// failed before execution.
type Response struct {
	Data   json.RawMessage
	Errors []*gqlerrors.QueryError

	executed bool
}

// Executed reports whether the operation ran. It is false for parse,
// validation and variable errors.
func (r *Response) Executed() bool {
	return r.executed
}

func (r Response) MarshalJSON() ([]byte, error) {
	out := struct {
		Data   *json.RawMessage        `json:"data,omitempty"`
		Errors []*gqlerrors.QueryError `json:"errors,omitempty"`
	}{Errors: r.Errors}

	if r.executed {
		raw := json.RawMessage("null")
		if len(r.Data) > 0 {
			raw = r.Data
		}
		out.Data = &raw
	}
	return json.Marshal(out)
}
