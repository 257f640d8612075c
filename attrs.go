package hxwidget

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
)

// WireAttrs builds the htmx attributes that call a widget endpoint from
// markup instead of from the widget.
//
// For GET the token and values are encoded into the hx-get URL. Other
// methods get the path in hx-post (etc.) and everything in hx-vals.
// The response is out-of-band only, so hx-swap is always "none".
func WireAttrs(path, method, token string, values map[string]string) templ.Attributes {
	attrs := templ.Attributes{"hx-swap": "none"}

	if method == http.MethodGet || method == "" {
		q := url.Values{}
		if token != "" {
			q.Set(tokenParam, token)
		}
		for k, v := range values {
			q.Set(k, v)
		}
		u := path
		if len(q) > 0 {
			u += "?" + q.Encode()
		}
		attrs["hx-get"] = u
		return attrs
	}

	switch method {
	case http.MethodPost:
		attrs["hx-post"] = path
	case http.MethodPut:
		attrs["hx-put"] = path
	case http.MethodPatch:
		attrs["hx-patch"] = path
	case http.MethodDelete:
		attrs["hx-delete"] = path
	}
	vals := make(map[string]string, len(values)+1)
	for k, v := range values {
		vals[k] = v
	}
	if token != "" {
		vals[tokenParam] = token
	}
	if len(vals) > 0 {
		data, _ := json.Marshal(vals)
		attrs["hx-vals"] = string(data)
	}
	return attrs
}
