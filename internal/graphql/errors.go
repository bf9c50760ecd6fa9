package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a request failed.
type Kind string

const (
	// KindTransport covers connection failures and non-2xx responses without a GraphQL body.
	KindTransport Kind = "transport"
	// KindGraphQL means the response carried an "errors" key.
	KindGraphQL Kind = "graphql"
	// KindDecode means the body was not a GraphQL response.
	KindDecode Kind = "decode"
)

// GraphQLError is one entry of a response's "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// RequestError is returned by Execute for every failed operation.
type RequestError struct {
	Operation  string
	Kind       Kind
	StatusCode int
	RequestID  string
	// Response is the raw response body, if any was read.
	Response []byte
	Errors   []GraphQLError
	Cause    error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graphql %s failed (%s", e.Operation, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ", HTTP %d", e.StatusCode)
	}
	b.WriteString(")")

	switch {
	case len(e.Errors) > 0:
		msgs := make([]string, 0, len(e.Errors))
		for _, ge := range e.Errors {
			msgs = append(msgs, ge.Message)
		}
		fmt.Fprintf(&b, ": %s", strings.Join(msgs, "; "))
	case e.Cause != nil:
		fmt.Fprintf(&b, ": %v", e.Cause)
	case e.Kind == KindGraphQL && len(e.Response) > 0:
		fmt.Fprintf(&b, ": response: %s", truncate(e.Response, 512))
	}
	return b.String()
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// IsTransport reports whether err is a transport-level RequestError.
func IsTransport(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindTransport
}

// IsGraphQL reports whether err is a RequestError caused by an "errors" key in the response.
func IsGraphQL(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindGraphQL
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
