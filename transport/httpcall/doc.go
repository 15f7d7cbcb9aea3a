// Package httpcall is the default clientconnect transport: it performs
// hotpatch calls as HTTP requests on a worker pool and exposes each call as a
// non-blocking api.Operation.
//
// Each request goes to the resolved endpoint with the resolved method, the
// api key in the X-API-Key header, a fresh X-Request-ID and the payload as a
// JSON body. The response status and body are returned unchanged. Failures
// before a response arrives complete the operation with
// api.StatusTransportError.
package httpcall
