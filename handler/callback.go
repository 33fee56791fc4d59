package handler

import (
	"net/http"
	"net/url"

	"github.com/mstgnz/robogate/provider"
)

// valuesFields exposes url.Values as provider.Fields, first value wins
type valuesFields url.Values

func (v valuesFields) Get(key string) (string, bool) {
	values, ok := v[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (v valuesFields) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	return keys
}

type httpCallback struct {
	query url.Values
	body  url.Values
}

func (c httpCallback) QueryFields() provider.Fields { return valuesFields(c.query) }
func (c httpCallback) BodyFields() provider.Fields  { return valuesFields(c.body) }

// RequestFields adapts an inbound HTTP request to provider.CallbackRequest.
// Query parameters come from the URL; body fields from an urlencoded form.
func RequestFields(r *http.Request) (provider.CallbackRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	return httpCallback{
		query: r.URL.Query(),
		body:  r.PostForm,
	}, nil
}
