package encoder

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps format names to encoders.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry returns a registry holding the built-in encoders.
func NewRegistry() *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, enc := range []Encoder{JPEGEncoder{}, PNGEncoder{}} {
		r.encoders[enc.Format()] = enc
	}
	return r
}

// Get returns the encoder for format. "jpg" is accepted as an alias.
func (r *Registry) Get(format string) (Encoder, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "jpg" {
		f = "jpeg"
	}
	enc, ok := r.encoders[f]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q (available: %s)", format, r)
	}
	return enc, nil
}

// String lists the registered formats.
func (r *Registry) String() string {
	names := make([]string, 0, len(r.encoders))
	for f := range r.encoders {
		names = append(names, f)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
