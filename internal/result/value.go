package result

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Literal renders a JSON value the way it reads on screen: strings unquoted,
// numbers in their shortest decimal form, null and booleans as words, and
// nested arrays or objects as compact JSON.
func Literal(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return string(v)
		}
		return s
	case 'n':
		return "null"
	case 't':
		return "true"
	case 'f':
		return "false"
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return string(v)
		}
		return buf.String()
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return string(v)
		}
		return formatNumber(f)
	}
}

// Cell renders a table cell. Missing and falsy values (null, false, 0, "")
// render as the empty string.
func Cell(raw json.RawMessage) string {
	if falsy(raw) {
		return ""
	}
	return Literal(raw)
}

func falsy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return true
	}
	switch v[0] {
	case 'n', 'f':
		return true
	case '"':
		return len(v) == 2
	case '[', '{', 't':
		return false
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		return err == nil && (f == 0 || math.IsNaN(f))
	}
}

func formatNumber(f float64) string {
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
