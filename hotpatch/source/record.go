package source

import (
	"fmt"
	"strings"

	"github.com/momentics/clientconnect/api"
)

// record is the serialized form of a hotpatch definition.
type record struct {
	Namespace string `json:"namespace"`
	API       string `json:"api"`
	Endpoint  string `json:"endpoint"`
	APIKey    string `json:"apiKey"`
	Payload   string `json:"payload"`
	Method    string `json:"method,omitempty"`
}

func (r record) definition() (api.Definition, error) {
	if r.Namespace == "" || r.API == "" {
		return api.Definition{}, fmt.Errorf("hotpatch record %q/%q: %w", r.Namespace, r.API, api.ErrInvalidArgument)
	}
	return api.Definition{
		Namespace:       r.Namespace,
		APIName:         r.API,
		EndpointBaseURL: r.Endpoint,
		APIKey:          r.APIKey,
		PayloadTemplate: r.Payload,
		Method:          strings.ToUpper(r.Method),
	}, nil
}
