package pipeline

import (
	"encoding/json"

	"github.com/zen-systems/askroute/pkg/rag"
	"github.com/zen-systems/askroute/pkg/router"
	"github.com/zen-systems/askroute/pkg/weather"
)

// Response is the answer to one query. Exactly one of Weather and PDF is set,
// matching Route.
type Response struct {
	Query       string
	Route       router.Route
	RouteReason string
	Answer      string

	Decision *router.Decision
	Weather  *weather.Result
	PDF      *rag.Result
}

// Fields flattens the response: the routing fields, overlaid by the handler's
// fields.
func (r *Response) Fields() map[string]any {
	fields := map[string]any{
		"query":        r.Query,
		"route":        r.Route,
		"route_reason": r.RouteReason,
		"answer":       r.Answer,
	}

	var handler map[string]any
	switch {
	case r.Weather != nil:
		handler = r.Weather.Fields()
	case r.PDF != nil:
		handler = r.PDF.Fields()
	}
	for k, v := range handler {
		fields[k] = v
	}
	return fields
}

// Citations returns the pdf citations, or nil for weather answers.
func (r *Response) Citations() []rag.Citation {
	if r.PDF == nil {
		return nil
	}
	return r.PDF.Citations
}

// MarshalJSON encodes the flattened fields.
func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}
