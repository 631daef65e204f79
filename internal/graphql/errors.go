package graphql

import (
	"context"
	"errors"
	"fmt"

	gqlerrors "github.com/graph-gophers/graphql-go/errors"

	"estategraph/server/internal/catalog"
	"estategraph/server/internal/store"
)

// Error codes reported in extensions.code.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeBadUserInput     = "BAD_USER_INPUT"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeCancelled        = "CANCELLED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeValidationFailed = "GRAPHQL_VALIDATION_FAILED"
	CodeBadRequest       = "BAD_REQUEST"
)

// Validation rules that reject variable values rather than the document.
var inputRules = map[string]bool{
	"VariablesOfCorrectType":     true,
	"DefaultValuesOfCorrectType": true,
}

// mapError converts a resolver error to a GraphQL error with an
// extensions.code. Internal failures are reported without their cause.
func mapError(err error) *gqlerrors.QueryError {
	var qe *gqlerrors.QueryError
	if errors.As(err, &qe) && Code(qe) != "" {
		return qe
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return codedError(err, "Request deadline exceeded", CodeDeadlineExceeded)
	case errors.Is(err, context.Canceled):
		return codedError(err, "Request cancelled", CodeCancelled)
	case errors.Is(err, store.ErrNotFound):
		return codedError(err, err.Error(), CodeNotFound)
	case errors.Is(err, catalog.ErrInvalidInput):
		return codedError(err, err.Error(), CodeBadUserInput)
	case errors.Is(err, store.ErrUnavailable):
		return codedError(err, "Entity store unavailable - please retry", CodeStoreUnavailable)
	}
	return codedError(err, "Internal server error", CodeInternal)
}

func codedError(err error, message, code string) *gqlerrors.QueryError {
	return &gqlerrors.QueryError{
		Err:        err,
		Message:    message,
		Extensions: map[string]interface{}{"code": code},
	}
}

// RequestError builds an error for a request rejected before execution.
func RequestError(code, format string, args ...interface{}) *gqlerrors.QueryError {
	return codedError(nil, fmt.Sprintf(format, args...), code)
}

// present assigns a code to every error of a response. Errors raised
// before execution are document or variable errors; errors raised while
// executing come from resolvers, argument coercion or cancellation.
func present(errs []*gqlerrors.QueryError, executed bool) []*gqlerrors.QueryError {
	out := make([]*gqlerrors.QueryError, len(errs))
	for i, qe := range errs {
		var mapped *gqlerrors.QueryError
		switch {
		case Code(qe) != "":
			mapped = qe
		case qe.ResolverError != nil:
			mapped = mapError(qe.ResolverError)
		case !executed && inputRules[qe.Rule]:
			mapped = codedError(qe.Err, qe.Message, CodeBadUserInput)
		case !executed:
			mapped = codedError(qe.Err, qe.Message, CodeValidationFailed)
		case errors.Is(qe.Err, context.Canceled) || errors.Is(qe.Err, context.DeadlineExceeded):
			mapped = mapError(qe.Err)
		default:
			mapped = codedError(qe.Err, qe.Message, CodeBadUserInput)
		}
		out[i] = locate(mapped, qe)
	}
	return out
}

// locate copies the path and locations of the raw error onto e.
func locate(e, raw *gqlerrors.QueryError) *gqlerrors.QueryError {
	if e == raw {
		return e
	}
	cp := *e
	cp.Path = raw.Path
	cp.Locations = raw.Locations
	cp.Rule = raw.Rule
	cp.ResolverError = raw.ResolverError
	return &cp
}

// Code returns the extensions.code of a GraphQL error, or "".
func Code(e *gqlerrors.QueryError) string {
	if e == nil || e.Extensions == nil {
		return ""
	}
	code, _ := e.Extensions["code"].(string)
	return code
}
