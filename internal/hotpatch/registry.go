// File: internal/hotpatch/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Immutable (namespace, api) -> definition registry.

package hotpatch

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/momentics/clientconnect/api"
)

type key struct {
	namespace string
	apiName   string
}

// Registry maps (namespace, apiName) pairs to hotpatch definitions. It is
// built once and never mutated, so lookups need no locking.
type Registry struct {
	defs map[key]api.Definition
}

// New builds a registry from defs. Empty namespaces or api names and
// duplicate pairs are rejected.
func New(defs ...api.Definition) (*Registry, error) {
	r := &Registry{defs: make(map[key]api.Definition, len(defs))}
	for _, d := range defs {
		if d.Namespace == "" || d.APIName == "" {
			return nil, api.NewError(api.ErrCodeInvalidArgument, "hotpatch definition needs namespace and api name").
				WithContext("namespace", d.Namespace).
				WithContext("api", d.APIName)
		}
		k := key{d.Namespace, d.APIName}
		if _, dup := r.defs[k]; dup {
			return nil, fmt.Errorf("hotpatch %s/%s: %w", d.Namespace, d.APIName, api.ErrAlreadyExists)
		}
		if d.Method == "" {
			d.Method = MethodFor(d.APIName)
		}
		r.defs[k] = d
	}
	return r, nil
}

// IsHotpatched reports whether a definition exists. Unknown pairs return false.
func (r *Registry) IsHotpatched(namespace, apiName string) bool {
	if r == nil {
		return false
	}
	_, ok := r.defs[key{namespace, apiName}]
	return ok
}

// Lookup returns the definition for the pair.
func (r *Registry) Lookup(namespace, apiName string) (api.Definition, bool) {
	if r == nil {
		return api.Definition{}, false
	}
	d, ok := r.defs[key{namespace, apiName}]
	return d, ok
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// Definitions returns a snapshot ordered by namespace then api name.
func (r *Registry) Definitions() []api.Definition {
	if r == nil {
		return nil
	}
	out := make([]api.Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].APIName < out[j].APIName
	})
	return out
}

var methodSuffixes = []string{
	http.MethodDelete,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
	http.MethodGet,
}

// MethodFor derives the HTTP method from an operation id such as
// "sessionPUT". Names without an upper-case method suffix default to POST.
func MethodFor(apiName string) string {
	for _, m := range methodSuffixes {
		if len(apiName) > len(m) && strings.HasSuffix(apiName, m) {
			return m
		}
	}
	return http.MethodPost
}
