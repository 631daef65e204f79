// Package graphql serves the wire schema. The embedded SDL is bound to method
// resolvers by graph-gophers/graphql-go: query fields resolve concurrently,
// mutation fields strictly in order, and a failing field becomes null with
// its error recorded under the field path.
package graphql

import (
	"context"
	_ "embed"
	"errors"
	"os"
	"runtime/debug"
	"strings"
	"time"

	gql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

//go:embed schema.graphql
var schemaSDL string

const (
	DefaultMaxDepth    = 10
	DefaultParallelism = 4
)

type Option func(*Executor)

// WithMaxDepth limits the nesting of selection sets. Introspection fields
// are not counted.
func WithMaxDepth(depth int) Option {
	return func(e *Executor) { e.maxDepth = depth }
}

// WithParallelism bounds the resolvers running at once for one request.
func WithParallelism(n int) Option {
	return func(e *Executor) { e.parallelism = n }
}

type Executor struct {
	schema      *gql.Schema
	logger      *logrus.Logger
	maxDepth    int
	parallelism int
}

// NewExecutor parses the schema and binds it to r. It panics when a
// resolver signature does not match the schema.
func NewExecutor(r *Resolver, logger *logrus.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	e := &Executor{
		logger:      logger,
		maxDepth:    DefaultMaxDepth,
		parallelism: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.parallelism <= 0 {
		e.parallelism = DefaultParallelism
	}

	e.schema = gql.MustParseSchema(schemaSDL, r,
		gql.UseStringDescriptions(),
		gql.MaxParallelism(e.parallelism),
		gql.Logger(panicLogger{logger}),
		gql.PanicHandler(panicHandler{}),
	)
	return e
}

// Execute runs one request. It never returns nil.
func (e *Executor) Execute(ctx context.Context, req Request) *Response {
	start := time.Now()

	op, rejected := e.preflight(req)
	if rejected != nil {
		return &Response{Errors: []*gqlerrors.QueryError{rejected}}
	}

	raw := e.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	executed := raw.Data != nil || interrupted(ctx, raw.Errors)
	resp := &Response{
		Data:     raw.Data,
		Errors:   present(raw.Errors, executed),
		executed: executed,
	}

	fields := logrus.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"errors":      len(resp.Errors),
		"executed":    executed,
	}
	if op != nil {
		fields["operation"] = op.Name
		fields["operation_type"] = op.Operation
	}
	e.logger.WithFields(fields).Debug("GraphQL operation executed")

	return resp
}

// interrupted reports whether execution stopped on the request context.
// The executor then drops the partial data and returns the context error.
func interrupted(ctx context.Context, errs []*gqlerrors.QueryError) bool {
	if ctx.Err() == nil || len(errs) != 1 {
		return false
	}
	return errors.Is(errs[0].Err, ctx.Err())
}

// preflight selects the operation and enforces the read-only flag and the
// depth limit. A document that does not parse is passed through; the
// executor reports the syntax error.
func (e *Executor) preflight(req Request) (*ast.OperationDefinition, *gqlerrors.QueryError) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query})
	if err != nil {
		return nil, nil
	}

	var op *ast.OperationDefinition
	switch {
	case req.OperationName != "":
		op = doc.Operations.ForName(req.OperationName)
		if op == nil {
			return nil, RequestError(CodeBadRequest, "unknown operation %q", req.OperationName)
		}
	case len(doc.Operations) > 1:
		return nil, RequestError(CodeBadRequest, "operation name is required when the document has several operations")
	case len(doc.Operations) == 1:
		op = doc.Operations[0]
	default:
		return nil, nil
	}

	switch op.Operation {
	case ast.Subscription:
		return op, RequestError(CodeBadRequest, "subscription operations are not supported")
	case ast.Mutation:
		if req.ReadOnly {
			return op, RequestError(CodeBadRequest, "mutations are not allowed on GET requests")
		}
	}

	if e.maxDepth > 0 {
		if depth := selectionDepth(doc, op.SelectionSet, map[string]bool{}); depth > e.maxDepth {
			return op, RequestError(CodeValidationFailed, "query depth %d exceeds the limit of %d", depth, e.maxDepth)
		}
	}
	return op, nil
}

func selectionDepth(doc *ast.QueryDocument, set ast.SelectionSet, visiting map[string]bool) int {
	depth := 0
	for _, sel := range set {
		d := 0
		switch s := sel.(type) {
		case *ast.Field:
			if strings.HasPrefix(s.Name, "__") {
				continue
			}
			d = 1 + selectionDepth(doc, s.SelectionSet, visiting)
		case *ast.InlineFragment:
			d = selectionDepth(doc, s.SelectionSet, visiting)
		case *ast.FragmentSpread:
			frag := doc.Fragments.ForName(s.Name)
			if frag == nil || visiting[s.Name] {
				continue
			}
			visiting[s.Name] = true
			d = selectionDepth(doc, frag.SelectionSet, visiting)
			delete(visiting, s.Name)
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

type panicLogger struct {
	logger *logrus.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.logger.WithFields(logrus.Fields{
		"panic": value,
		"stack": string(debug.Stack()),
	}).Error("Resolver panicked")
}

type panicHandler struct{}

func (panicHandler) MakePanicError(_ context.Context, _ interface{}) *gqlerrors.QueryError {
	return codedError(nil, "Internal server error", CodeInternal)
}
