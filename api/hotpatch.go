// File: api/hotpatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Hotpatch definitions and the transport contract used to perform calls.

package api

import (
	"context"
	"encoding/json"
)

// StatusTransportError is reported as the status code of a call whose
// transport failed before any HTTP response was received.
const StatusTransportError = 0

// Definition is a remotely configured override of an API's endpoint, key
// and payload. Definitions are read-only once registered.
type Definition struct {
	Namespace       string
	APIName         string
	EndpointBaseURL string
	APIKey          string
	PayloadTemplate string
	// Method is the HTTP method. Empty derives it from the APIName suffix.
	Method string
}

// Request is a fully resolved call handed to the transport.
type Request struct {
	Namespace string
	APIName   string
	Method    string
	Endpoint  string
	APIKey    string
	Payload   string
}

// Response is the raw outcome of a call. Body is surfaced to the host
// byte-for-byte.
type Response struct {
	StatusCode int
	Body       []byte
}

// Operation is a submitted call. Poll never blocks; it reports the response
// once the transport has finished and false before that. Poll may be called
// any number of times and returns the same response after completion.
type Operation interface {
	Poll() (Response, bool)
}

// Transport performs hotpatch calls on its own workers.
type Transport interface {
	// Submit starts req asynchronously and returns immediately.
	Submit(req Request) (Operation, error)

	// Close aborts in-flight operations and rejects further submissions.
	Close() error
}

// DefinitionSource loads hotpatch definitions from a configuration backend.
type DefinitionSource interface {
	Load(ctx context.Context) ([]Definition, error)
}

// CompletionFunc receives the status code and body of a finished call. The
// body is only valid for the duration of the callback.
type CompletionFunc func(statusCode int, body []byte)

// systemError mirrors the error document returned by the platform APIs.
type systemError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Fields  string `json:"fields,omitempty"`
}

// TransportErrorResponse folds a transport failure into the regular
// status/body channel.
func TransportErrorResponse(err error) Response {
	doc := systemError{Code: 0, Message: "transport error"}
	if err != nil {
		doc.Fields = err.Error()
	}
	body, mErr := json.Marshal(doc)
	if mErr != nil {
		body = []byte(`{"code":0,"message":"transport error"}`)
	}
	return Response{StatusCode: StatusTransportError, Body: body}
}
