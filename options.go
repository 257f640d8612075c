package hxwidget

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JS is raw javascript emitted verbatim into generated scripts.
// Use it for option values that are functions or expressions.
type JS string

// Options is the widget option table passed to the jQuery plugin call.
// Keys keep insertion order so generated scripts are stable.
type Options struct {
	keys   []string
	values map[string]any
}

// NewOptions creates an empty option table.
func NewOptions() *Options {
	return &Options{values: make(map[string]any)}
}

// Set stores an option, replacing any existing value for key.
func (o *Options) Set(key string, value any) *Options {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored for key.
func (o *Options) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Delete removes key from the table.
func (o *Options) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns option keys in insertion order.
func (o *Options) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of options.
func (o *Options) Len() int {
	return len(o.keys)
}

// Render produces a javascript object literal. JS values are copied
// verbatim; everything else is JSON encoded.
func (o *Options) Render() (string, error) {
	var sb strings.Builder
	sb.WriteString("{")
	for i, key := range o.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		k, _ := json.Marshal(key)
		sb.Write(k)
		sb.WriteString(": ")

		switch v := o.values[key].(type) {
		case JS:
			sb.WriteString(string(v))
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("hxwidget: option %q: %w", key, err)
			}
			sb.Write(data)
		}
	}
	sb.WriteString("}")
	return sb.String(), nil
}

// String renders the table for debugging; encoding failures yield "{}".
func (o *Options) String() string {
	s, err := o.Render()
	if err != nil {
		return "{}"
	}
	return s
}
