package hotpatch

import "github.com/momentics/clientconnect/api"

// Overrides are call-site connection details. Empty fields fall back to the
// registered definition.
type Overrides struct {
	Endpoint string
	APIKey   string
	Payload  string
}

// Resolve merges o over d, field by field.
func Resolve(d api.Definition, o Overrides) api.Request {
	req := api.Request{
		Namespace: d.Namespace,
		APIName:   d.APIName,
		Method:    d.Method,
		Endpoint:  d.EndpointBaseURL,
		APIKey:    d.APIKey,
		Payload:   d.PayloadTemplate,
	}
	if req.Method == "" {
		req.Method = MethodFor(d.APIName)
	}
	if o.Endpoint != "" {
		req.Endpoint = o.Endpoint
	}
	if o.APIKey != "" {
		req.APIKey = o.APIKey
	}
	if o.Payload != "" {
		req.Payload = o.Payload
	}
	return req
}
