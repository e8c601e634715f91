package response

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrymomot/hyperkit/core/handler"
)

// HTMX Response Headers - sent by server to control HTMX behavior
const (
	HeaderHXLocation           = "HX-Location"
	HeaderHXPushURL            = "HX-Push-Url"
	HeaderHXRedirect           = "HX-Redirect"
	HeaderHXRefresh            = "HX-Refresh"
	HeaderHXReplaceURL         = "HX-Replace-Url"
	HeaderHXReswap             = "HX-Reswap"
	HeaderHXRetarget           = "HX-Retarget"
	HeaderHXReselect           = "HX-Reselect"
	HeaderHXTrigger            = "HX-Trigger"
	HeaderHXTriggerAfterSwap   = "HX-Trigger-After-Swap"
	HeaderHXTriggerAfterSettle = "HX-Trigger-After-Settle"
)

// HTMX Request Headers - sent by HTMX client to server
const (
	HeaderHXRequest               = "HX-Request"
	HeaderHXBoosted               = "HX-Boosted"
	HeaderHXCurrentURL            = "HX-Current-URL"
	HeaderHXHistoryRestoreRequest = "HX-History-Restore-Request"
	HeaderHXPrompt                = "HX-Prompt"
	HeaderHXTarget                = "HX-Target"
	HeaderHXTriggerName           = "HX-Trigger-Name"
	HeaderHXTriggerHeader         = "HX-Trigger"
)

// VaryHeader is set on every normalized response so caches keep fragment and
// full-page variants apart.
const VaryHeader = HeaderHXRequest + ", " + HeaderHXHistoryRestoreRequest

// HTMXHeaders is the bundle of HTMX request headers. A missing header is an
// empty string.
type HTMXHeaders struct {
	Boosted               string
	CurrentURL            string
	HistoryRestoreRequest string
	Prompt                string
	Request               string
	Target                string
	TriggerName           string
	Trigger               string
}

// ParseHTMXHeaders extracts the HTMX request headers from h.
func ParseHTMXHeaders(h http.Header) HTMXHeaders {
	return HTMXHeaders{
		Boosted:               h.Get(HeaderHXBoosted),
		CurrentURL:            h.Get(HeaderHXCurrentURL),
		HistoryRestoreRequest: h.Get(HeaderHXHistoryRestoreRequest),
		Prompt:                h.Get(HeaderHXPrompt),
		Request:               h.Get(HeaderHXRequest),
		Target:                h.Get(HeaderHXTarget),
		TriggerName:           h.Get(HeaderHXTriggerName),
		Trigger:               h.Get(HeaderHXTriggerHeader),
	}
}

// GetHTMXHeaders extracts the HTMX request headers from r.
func GetHTMXHeaders(r *http.Request) HTMXHeaders {
	return ParseHTMXHeaders(r.Header)
}

// IsHTMXRequest reports whether the request carries an HX-Request header.
// Only presence is checked.
func IsHTMXRequest(r *http.Request) bool {
	return hasHeader(r.Header, HeaderHXRequest)
}

// IsHistoryRestore reports whether the request carries an HX-History-Restore-Request header.
func IsHistoryRestore(r *http.Request) bool {
	return hasHeader(r.Header, HeaderHXHistoryRestoreRequest)
}

// IsHTMXBoosted checks if the request is from HTMX boost.
func IsHTMXBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderHXBoosted) == "true"
}

func hasHeader(h http.Header, key string) bool {
	_, ok := h[http.CanonicalHeaderKey(key)]
	return ok
}

// HTMXOption configures HTMX-specific response headers.
type HTMXOption func(*htmxConfig)

type htmxConfig struct {
	trigger            map[string]any
	triggerAfterSwap   map[string]any
	triggerAfterSettle map[string]any
	pushURL            string
	replaceURL         string
	redirect           string
	refresh            bool
	reswap             string
	retarget           string
	reselect           string
	location           any
}

// HX builds HTMX response headers from options. The result can be returned
// from a handler next to its content.
func HX(opts ...HTMXOption) []HTTPHeader {
	cfg := &htmxConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var out []HTTPHeader
	add := func(field, value string) {
		out = append(out, HXHeader(field, value))
	}

	switch v := cfg.location.(type) {
	case string:
		add("location", v)
	case map[string]any:
		if data, err := json.Marshal(v); err == nil {
			add("location", string(data))
		}
	}
	if cfg.pushURL != "" {
		add("push_url", cfg.pushURL)
	}
	if cfg.replaceURL != "" {
		add("replace_url", cfg.replaceURL)
	}
	if cfg.redirect != "" {
		add("redirect", cfg.redirect)
	}
	if cfg.refresh {
		add("refresh", "true")
	}
	if cfg.reswap != "" {
		add("reswap", cfg.reswap)
	}
	if cfg.retarget != "" {
		add("retarget", cfg.retarget)
	}
	if cfg.reselect != "" {
		add("reselect", cfg.reselect)
	}
	for field, events := range map[string]map[string]any{
		"trigger":              cfg.trigger,
		"trigger_after_swap":   cfg.triggerAfterSwap,
		"trigger_after_settle": cfg.triggerAfterSettle,
	} {
		if len(events) == 0 {
			continue
		}
		if data, err := json.Marshal(events); err == nil {
			add(field, string(data))
		}
	}
	return out
}

// WithHTMX wraps any response with HTMX-specific headers.
func WithHTMX(response handler.Renderer, opts ...HTMXOption) handler.Response {
	if response == nil {
		return nil
	}
	headers := HX(opts...)
	return func(w http.ResponseWriter, r *http.Request) error {
		for _, h := range headers {
			h.apply(w.Header())
		}
		return response.Render(w, r)
	}
}

// Trigger sets the HX-Trigger header with multiple events.
// Events are serialized as JSON.
func Trigger(events map[string]any) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.trigger = events
	}
}

// TriggerEvent sets a single event in the HX-Trigger header.
// If called multiple times, events are merged.
func TriggerEvent(name string, detail any) HTMXOption {
	return func(cfg *htmxConfig) {
		if cfg.trigger == nil {
			cfg.trigger = make(map[string]any)
		}
		cfg.trigger[name] = detail
	}
}

// TriggerAfterSwap sets the HX-Trigger-After-Swap header with multiple events.
func TriggerAfterSwap(events map[string]any) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.triggerAfterSwap = events
	}
}

// TriggerAfterSettle sets the HX-Trigger-After-Settle header with multiple events.
func TriggerAfterSettle(events map[string]any) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.triggerAfterSettle = events
	}
}

// PushURL sets the HX-Push-Url header. Use "false" to prevent a URL update.
func PushURL(url string) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.pushURL = url
	}
}

// ReplaceURL sets the HX-Replace-Url header. Use "false" to prevent URL replacement.
func ReplaceURL(url string) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.replaceURL = url
	}
}

// HTMXRedirect sets the HX-Redirect header for a full client-side redirect.
func HTMXRedirect(url string) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.redirect = url
	}
}

// Refresh sets the HX-Refresh header to trigger a full page refresh.
func Refresh() HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.refresh = true
	}
}

// Reswap sets the HX-Reswap header, e.g. Reswap("innerHTML", "swap:500ms").
func Reswap(method string, modifiers ...string) HTMXOption {
	return func(cfg *htmxConfig) {
		if len(modifiers) > 0 {
			cfg.reswap = method + " " + strings.Join(modifiers, " ")
		} else {
			cfg.reswap = method
		}
	}
}

// Retarget sets the HX-Retarget header to a CSS selector.
func Retarget(selector string) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.retarget = selector
	}
}

// Reselect sets the HX-Reselect header to a CSS selector.
func Reselect(selector string) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.reselect = selector
	}
}

// Location sets the HX-Location header. Accepts a URL or a location object.
func Location(urlOrObject any) HTMXOption {
	return func(cfg *htmxConfig) {
		cfg.location = urlOrObject
	}
}
