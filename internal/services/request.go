package services

import (
	"net/http"
	"net/url"
	"strings"
)

// QueryParam is one name/value pair of a request query string.
type QueryParam struct {
	Name  string
	Value string
}

// Request describes one not-yet-executed catalog call.
//
// Path is relative to the client's base URL. Query parameters are encoded in the order given and duplicate names
// are all sent.
type Request struct {
	Method  string
	Path    string
	Query   []QueryParam
	Headers map[string]string
}

// NewRequest builds a [Request]. It performs no validation.
func NewRequest(method, path string, params []QueryParam, headers map[string]string) Request {
	if method == "" {
		method = http.MethodGet
	}

	r := Request{Method: method, Path: path}
	if len(params) > 0 {
		r.Query = append([]QueryParam(nil), params...)
	}
	if len(headers) > 0 {
		r.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
	return r
}

// Get is shorthand for a GET [Request] without headers.
func Get(path string, params ...QueryParam) Request {
	return NewRequest(http.MethodGet, path, params, nil)
}

// AddQuery appends a query parameter and returns the updated request.
func (r Request) AddQuery(name, value string) Request {
	r.Query = append(append([]QueryParam(nil), r.Query...), QueryParam{Name: name, Value: value})
	return r
}

// SetHeader sets a header that overrides the client defaults and returns the updated request.
func (r Request) SetHeader(name, value string) Request {
	h := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		h[k] = v
	}
	h[name] = value
	r.Headers = h
	return r
}

// RawQuery encodes the query parameters in order.
func (r Request) RawQuery() string {
	if len(r.Query) == 0 {
		return ""
	}

	parts := make([]string, 0, len(r.Query))
	for _, p := range r.Query {
		parts = append(parts, url.QueryEscape(p.Name)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// resolve joins the request path onto base.
func (r Request) resolve(base *url.URL) (*url.URL, error) {
	if strings.TrimSpace(r.Path) == "" {
		return nil, errEmptyPath
	}
	if strings.ContainsAny(r.Path, "?#") {
		return nil, errPathQuery
	}

	rel, err := url.Parse(strings.TrimLeft(r.Path, "/"))
	if err != nil {
		return nil, err
	}
	if rel.IsAbs() || rel.Host != "" {
		return nil, errAbsolutePath
	}

	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + "/" + rel.Path
	u.RawPath = strings.TrimRight(base.EscapedPath(), "/") + "/" + rel.EscapedPath()
	u.RawQuery = r.RawQuery()
	return &u, nil
}
