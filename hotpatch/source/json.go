package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/momentics/clientconnect/api"
)

// document is the JSON layout accepted by JSON:
//
//	{"hotpatches": [{"namespace": "temp-session", "api": "sessionPUT",
//	  "endpoint": "https://...", "apiKey": "...", "payload": "{}"}]}
type document struct {
	Hotpatches []record `json:"hotpatches"`
}

// JSON loads definitions from a JSON document.
type JSON struct {
	open func() (io.ReadCloser, error)
	name string
}

var _ api.DefinitionSource = (*JSON)(nil)

// FromFile reads definitions from the file at path on every Load.
func FromFile(path string) *JSON {
	return &JSON{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FromBytes reads definitions from an in-memory document.
func FromBytes(doc []byte) *JSON {
	return &JSON{
		name: "inline",
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(doc)), nil },
	}
}

// Load implements api.DefinitionSource.
func (j *JSON) Load(ctx context.Context) ([]api.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := j.open()
	if err != nil {
		return nil, fmt.Errorf("open hotpatch document %s: %w", j.name, err)
	}
	defer rc.Close()

	var doc document
	dec := json.NewDecoder(rc)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode hotpatch document %s: %w", j.name, err)
	}
	defs := make([]api.Definition, 0, len(doc.Hotpatches))
	for _, r := range doc.Hotpatches {
		d, err := r.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}
