package httpcall_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/transport/httpcall"
)

func waitFor(t *testing.T, op api.Operation) api.Response {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if resp, ok := op.Poll(); ok {
			return resp
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("operation did not complete")
	return api.Response{}
}

func TestTransportRoundTrip(t *testing.T) {
	type seen struct {
		method, key, reqID, ctype, body string
	}
	got := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- seen{r.Method, r.Header.Get(httpcall.HeaderAPIKey), r.Header.Get(httpcall.HeaderRequestID), r.Header.Get("Content-Type"), string(b)}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	tr := httpcall.New(httpcall.Config{Workers: 2})
	defer tr.Close()

	op, err := tr.Submit(api.Request{
		Namespace: "temp-session",
		APIName:   "sessionPUT",
		Method:    http.MethodPut,
		Endpoint:  srv.URL,
		APIKey:    "secret",
		Payload:   `{"a":1}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	resp := waitFor(t, op)
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "{}" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, resp.Body)
	}

	s := <-got
	if s.method != http.MethodPut || s.key != "secret" || s.body != `{"a":1}` || s.ctype != "application/json" {
		t.Errorf("unexpected request %+v", s)
	}
	if s.reqID == "" {
		t.Error("request id header missing")
	}

	again, ok := op.Poll()
	if !ok || again.StatusCode != resp.StatusCode {
		t.Error("Poll is not stable after completion")
	}
}

func TestTransportSurfacesErrorStatusUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"code":418}`))
	}))
	defer srv.Close()

	tr := httpcall.New(httpcall.Config{})
	defer tr.Close()

	op, err := tr.Submit(api.Request{Endpoint: srv.URL, Method: http.MethodGet})
	if err != nil {
		t.Fatal(err)
	}
	resp := waitFor(t, op)
	if resp.StatusCode != http.StatusTeapot || string(resp.Body) != `{"code":418}` {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, resp.Body)
	}
}

func TestTransportFoldsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr := httpcall.New(httpcall.Config{Workers: 1})
	defer tr.Close()

	op, err := tr.Submit(api.Request{Endpoint: url})
	if err != nil {
		t.Fatal(err)
	}
	resp := waitFor(t, op)
	if resp.StatusCode != api.StatusTransportError {
		t.Fatalf("expected transport error status, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "transport error") {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestTransportRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	tr := httpcall.New(httpcall.Config{BodyLimit: 10})
	defer tr.Close()

	op, err := tr.Submit(api.Request{Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp := waitFor(t, op)
	if resp.StatusCode != api.StatusTransportError {
		t.Fatalf("oversized body reported status %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), api.ErrResourceExhausted.Error()) {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestTransportAcceptsBodyAtLimit(t *testing.T) {
	payload := strings.Repeat("y", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	tr := httpcall.New(httpcall.Config{BodyLimit: 10})
	defer tr.Close()

	op, err := tr.Submit(api.Request{Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp := waitFor(t, op)
	if resp.StatusCode != http.StatusOK || string(resp.Body) != payload {
		t.Fatalf("got %d %q", resp.StatusCode, resp.Body)
	}
}

func TestTransportUsesConfiguredLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tr := httpcall.New(httpcall.Config{Workers: 1, Logger: zap.New(core)})
	defer tr.Close()

	op, err := tr.Submit(api.Request{Namespace: "ns", APIName: "get", Endpoint: "http://127.0.0.1:1/unreachable"})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, op)
	if logs.FilterMessage("hotpatch call failed").Len() != 1 {
		t.Fatalf("failure not logged on the transport logger: %v", logs.All())
	}
}

func TestTransportRejectsAfterClose(t *testing.T) {
	tr := httpcall.New(httpcall.Config{Workers: 1})
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Close(); err != nil {
		t.Fatal("second close should be a no-op")
	}
	if _, err := tr.Submit(api.Request{Endpoint: "http://127.0.0.1:1"}); !errors.Is(err, api.ErrTransportClosed) {
		t.Fatalf("expected ErrTransportClosed, got %v", err)
	}
}

func TestTransportRejectsMissingEndpoint(t *testing.T) {
	tr := httpcall.New(httpcall.Config{Workers: 1})
	defer tr.Close()
	if _, err := tr.Submit(api.Request{Namespace: "ns", APIName: "x"}); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
