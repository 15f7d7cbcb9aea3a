package hotpatch_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/momentics/clientconnect/api"
	"github.com/momentics/clientconnect/internal/hotpatch"
)

func sessionPUT() api.Definition {
	return api.Definition{
		Namespace:       "temp-session",
		APIName:         "sessionPUT",
		EndpointBaseURL: "https://temp-session-api.example.com/v1",
		APIKey:          "registry-key",
		PayloadTemplate: "{}",
	}
}

func TestRegistryMembership(t *testing.T) {
	r, err := hotpatch.New(sessionPUT())
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsHotpatched("temp-session", "sessionPUT") {
		t.Fatal("registered pair not reported as hotpatched")
	}
	cases := [][2]string{
		{"temp-session", "sessionGET"},
		{"other", "sessionPUT"},
		{"", ""},
		{"temp-session", "sessionput"},
	}
	for _, c := range cases {
		if r.IsHotpatched(c[0], c[1]) {
			t.Errorf("unregistered pair %v reported as hotpatched", c)
		}
	}
}

func TestRegistryNilIsEmpty(t *testing.T) {
	var r *hotpatch.Registry
	if r.IsHotpatched("a", "b") || r.Len() != 0 {
		t.Fatal("nil registry must behave as empty")
	}
	if _, ok := r.Lookup("a", "b"); ok {
		t.Fatal("nil registry lookup succeeded")
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	if _, err := hotpatch.New(api.Definition{APIName: "x"}); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := hotpatch.New(sessionPUT(), sessionPUT()); !errors.Is(err, api.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegistryDefinitionsSorted(t *testing.T) {
	b := sessionPUT()
	b.Namespace = "a-ns"
	r, err := hotpatch.New(sessionPUT(), b)
	if err != nil {
		t.Fatal(err)
	}
	defs := r.Definitions()
	if len(defs) != 2 || r.Len() != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Namespace != "a-ns" {
		t.Errorf("definitions not sorted: %+v", defs)
	}
	if defs[0].Method != http.MethodPut {
		t.Errorf("method not derived at registration: %q", defs[0].Method)
	}
}

func TestMethodFor(t *testing.T) {
	cases := map[string]string{
		"sessionPUT":    http.MethodPut,
		"sessionGET":    http.MethodGet,
		"sessionDELETE": http.MethodDelete,
		"lobbyPATCH":    http.MethodPatch,
		"lobbyPOST":     http.MethodPost,
		"custom":        http.MethodPost,
		"PUT":           http.MethodPost,
	}
	for name, want := range cases {
		if got := hotpatch.MethodFor(name); got != want {
			t.Errorf("MethodFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestResolveOverridePrecedence(t *testing.T) {
	d := sessionPUT()
	d.Method = http.MethodPut

	req := hotpatch.Resolve(d, hotpatch.Overrides{})
	if req.Endpoint != d.EndpointBaseURL || req.APIKey != d.APIKey || req.Payload != d.PayloadTemplate {
		t.Errorf("empty overrides should fall back to the definition: %+v", req)
	}

	req = hotpatch.Resolve(d, hotpatch.Overrides{Endpoint: "https://override", Payload: `{"a":1}`})
	if req.Endpoint != "https://override" || req.Payload != `{"a":1}` {
		t.Errorf("non-empty overrides should win: %+v", req)
	}
	if req.APIKey != d.APIKey {
		t.Errorf("empty api key override should fall back, got %q", req.APIKey)
	}
	if req.Method != http.MethodPut || req.Namespace != d.Namespace || req.APIName != d.APIName {
		t.Errorf("identity fields not carried: %+v", req)
	}
}
