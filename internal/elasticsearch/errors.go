package elasticsearch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	// ErrIndexNotFound matches 404 index_not_found_exception responses.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexExists matches resource_already_exists_exception responses.
	ErrIndexExists = errors.New("index already exists")
)

const (
	typeIndexNotFound = "index_not_found_exception"
	typeAlreadyExists = "resource_already_exists_exception"
)

// ResponseError is an error response from the cluster.
type ResponseError struct {
	Operation string
	Status    int
	Type      string
	Reason    string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: status %d: %s", e.Operation, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s: status %d: %s: %s", e.Operation, e.Status, e.Type, e.Reason)
}

// Is lets errors.Is match the sentinel errors.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrIndexNotFound:
		return e.Type == typeIndexNotFound || (e.Type == "" && e.Status == http.StatusNotFound)
	case ErrIndexExists:
		return e.Type == typeAlreadyExists
	default:
		return false
	}
}

type errorEnvelope struct {
	Status int             `json:"status"`
	Error  json.RawMessage `json:"error"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func decodeError(operation string, res *esapi.Response) error {
	rErr := &ResponseError{Operation: operation, Status: res.StatusCode}

	body, err := io.ReadAll(res.Body)
	if err != nil || len(body) == 0 {
		rErr.Reason = http.StatusText(res.StatusCode)
		return rErr
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) != nil || len(env.Error) == 0 {
		rErr.Reason = string(body)
		return rErr
	}

	var cause errorCause
	if json.Unmarshal(env.Error, &cause) == nil && cause.Type != "" {
		rErr.Type = cause.Type
		rErr.Reason = cause.Reason
		return rErr
	}

	var reason string
	if json.Unmarshal(env.Error, &reason) == nil {
		rErr.Reason = reason
		return rErr
	}
	rErr.Reason = string(env.Error)
	return rErr
}
