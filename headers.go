package sdk

import (
	"slices"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Headers is an insertion-ordered, multi-valued header mapping.
// Keys are matched exactly; case handling is left to the host.
// The zero value is an empty set ready to use.
type Headers struct {
	m *orderedmap.OrderedMap[string, []string]
}

// NewHeaders returns an empty header set.
func NewHeaders() *Headers {
	return &Headers{m: orderedmap.New[string, []string]()}
}

func (h *Headers) init() {
	if h.m == nil {
		h.m = orderedmap.New[string, []string]()
	}
}

// Get returns a copy of the values for name, or nil when absent.
func (h *Headers) Get(name string) []string {
	if h == nil || h.m == nil {
		return nil
	}
	values, ok := h.m.Get(name)
	if !ok {
		return nil
	}
	return slices.Clone(values)
}

// Has reports whether name is present.
func (h *Headers) Has(name string) bool {
	if h == nil || h.m == nil {
		return false
	}
	_, ok := h.m.Get(name)
	return ok
}

// Set replaces the values for name, keeping its original position.
func (h *Headers) Set(name string, values ...string) {
	h.init()
	h.m.Set(name, slices.Clone(values))
}

// Add appends a value to name, creating it at the end when absent.
func (h *Headers) Add(name, value string) {
	h.init()
	values, _ := h.m.Get(name)
	h.m.Set(name, append(slices.Clone(values), value))
}

// Del removes name.
func (h *Headers) Del(name string) {
	if h == nil || h.m == nil {
		return
	}
	h.m.Delete(name)
}

// Len returns the number of distinct names.
func (h *Headers) Len() int {
	if h == nil || h.m == nil {
		return 0
	}
	return h.m.Len()
}

// Keys returns the header names in insertion order.
func (h *Headers) Keys() []string {
	keys := make([]string, 0, h.Len())
	h.Each(func(name string, _ []string) {
		keys = append(keys, name)
	})
	return keys
}

// Each calls fn for every header in insertion order.
func (h *Headers) Each(fn func(name string, values []string)) {
	if h == nil || h.m == nil {
		return
	}
	for pair := h.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, slices.Clone(pair.Value))
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	out := NewHeaders()
	h.Each(func(name string, values []string) {
		out.m.Set(name, values)
	})
	return out
}

func (h *Headers) toWire() []entities.HeaderField {
	if h.Len() == 0 {
		return nil
	}
	fields := make([]entities.HeaderField, 0, h.Len())
	h.Each(func(name string, values []string) {
		fields = append(fields, entities.HeaderField{Name: name, Values: values})
	})
	return fields
}

func headersFromWire(fields []entities.HeaderField) *Headers {
	h := NewHeaders()
	for _, f := range fields {
		existing, _ := h.m.Get(f.Name)
		h.m.Set(f.Name, append(existing, f.Values...))
	}
	return h
}
