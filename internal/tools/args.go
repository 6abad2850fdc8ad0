package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Param names a tool argument as it appears in JSON bodies and CLI flags.
type Param string

const (
	ParamRegime Param = "regime"
	ParamYear   Param = "year"
	ParamMonth  Param = "month_input"
	ParamQuery  Param = "query"
)

// Value is a scalar argument that may arrive as a JSON string or number.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = Value(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*v = Value(normalizeNumber(n.String()))
	return nil
}

func (v Value) String() string { return strings.TrimSpace(string(v)) }

// Args is the union of every tool's arguments. Tools read only what they
// declare.
type Args struct {
	Regime     string `json:"regime"`
	Year       Value  `json:"year"`
	MonthInput Value  `json:"month_input"`
	Query      string `json:"query"`
}

// normalizeNumber turns "2024.0" into "2024" so integral floats read as years.
func normalizeNumber(s string) string {
	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" {
		return whole
	}
	return s
}
