// README: Itinerary request/result types and loose rendering of client-supplied values.
package itinerary

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NotSpecified is rendered for a field the client left out or sent as null.
const NotSpecified = "not specified"

// Value is a request field kept exactly as the client sent it.
// The endpoint does not validate types; String renders whatever arrived.
type Value json.RawMessage

func (v *Value) UnmarshalJSON(b []byte) error {
	*v = append((*v)[:0], b...)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

// String renders the value for prompt interpolation the way a JavaScript
// template literal would: strings verbatim, numbers in shortest form (3.0 is 3),
// lists joined with "," (null elements empty), booleans as written.
// Objects render as compact JSON rather than "[object Object]".
func (v Value) String() string {
	raw := bytes.TrimSpace(v)
	if len(raw) == 0 || string(raw) == "null" {
		return NotSpecified
	}
	return render(raw)
}

func render(raw []byte) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	c := raw[0]
	switch {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case c == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				parts = append(parts, render(bytes.TrimSpace(item)))
			}
			return strings.Join(parts, ",")
		}
	case c == '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	case c == '-' || (c >= '0' && c <= '9'):
		return formatNumber(string(raw))
	}
	return string(raw)
}

// formatNumber prints a JSON number the way JavaScript's Number#toString does
// for the common range; literals outside float64 are kept as sent.
func formatNumber(lit string) string {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	if f == 0 {
		return "0"
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Request is the body of POST /generate-itinerary.
type Request struct {
	Location  Value `json:"location"`
	Budget    Value `json:"budget"`
	Days      Value `json:"days"`
	Interests Value `json:"interests"`
	GroupSize Value `json:"groupSize"`
}

// MapLocation is one day's primary place from the MAP LOCATIONS section.
type MapLocation struct {
	Day    int     `json:"day"`
	Place  string  `json:"place"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Source string  `json:"source"`
}

const (
	SourceModel    = "model"
	SourceGeocoder = "geocoder"
)

// Result is the success body. Itinerary is the upstream text, unmodified.
type Result struct {
	Itinerary string        `json:"itinerary"`
	Locations []MapLocation `json:"locations,omitempty"`
}
