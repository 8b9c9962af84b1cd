package subsonic

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/auth"
)

// inboundCall is one parsed API request: merged query and form parameters,
// the negotiated response format and, after authentication, the caller.
type inboundCall struct {
	params   url.Values
	format   string
	callback string
	user     auth.Identity
}

// parseCall merges query string and form body parameters and negotiates the
// response format. Parsing never fails; unparseable bodies just contribute
// no parameters.
func parseCall(r *http.Request) *inboundCall {
	params := url.Values{}
	for key, values := range r.URL.Query() {
		params[key] = values
	}
	if err := r.ParseForm(); err == nil {
		for key, values := range r.PostForm {
			params[key] = append(params[key], values...)
		}
	}

	c := &inboundCall{params: params}
	switch params.Get("f") {
	case "json":
		c.format = "json"
	case "jsonp":
		c.format = "jsonp"
		c.callback = params.Get("callback")
		if c.callback == "" {
			// no callback to wrap with, degrade to plain json
			c.format = "json"
		}
	default:
		c.format = "xml"
	}
	return c
}

// credentials extracts the auth material of the call.
func (c *inboundCall) credentials(required bool) auth.Call {
	return auth.Call{
		Username: c.params.Get("u"),
		Password: c.params.Get("p"),
		Token:    c.params.Get("t"),
		Salt:     c.params.Get("s"),
		Required: required,
	}
}

func (c *inboundCall) param(name string) string {
	return c.params.Get(name)
}

func (c *inboundCall) paramList(name string) []string {
	return c.params[name]
}

func (c *inboundCall) has(name string) bool {
	return c.params.Has(name)
}

func (c *inboundCall) intParam(name string, fallback int) int {
	v := c.params.Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (c *inboundCall) int64Param(name string, fallback int64) int64 {
	v := c.params.Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (c *inboundCall) boolParam(name string, fallback bool) bool {
	v := c.params.Get(name)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// timeParam interprets a millisecond epoch parameter. Zero time when absent
// or malformed.
func (c *inboundCall) timeParam(name string) time.Time {
	ms := c.int64Param(name, 0)
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// idParam decodes a typed identifier parameter. The bool is false when the
// parameter is missing entirely; a present but undecodable value returns an
// error, which handlers report as not found.
func (c *inboundCall) idParam(name string) (apikey.ID, bool, error) {
	v := c.params.Get(name)
	if v == "" {
		return apikey.ID{}, false, nil
	}
	id, err := apikey.Parse(v)
	if err != nil {
		return apikey.ID{}, true, err
	}
	return id, true, nil
}
