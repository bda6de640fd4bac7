package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// MaxRangeSpan bounds the expansion of range text. Wider ranges are treated
// as malformed.
const MaxRangeSpan = 10000

var rangePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// PhaseField is the closed set of shapes a phase or slot cell can take.
type PhaseField interface {
	// Values returns the canonical integer sequence, never nil.
	Values() []int
	isPhaseField()
}

// Missing is an absent or blank cell.
type Missing struct{}

// RangeText is an inclusive "a-b" range.
type RangeText struct {
	Start int
	End   int
}

// ListText is comma separated text parsed token by token.
type ListText string

// Parsed is an array that has already been decoded.
type Parsed []int

// Malformed holds text that looked structured but could not be decoded,
// e.g. "[1,2" or a range whose start exceeds its end.
type Malformed struct {
	Raw string
}

func (Missing) isPhaseField()   {}
func (RangeText) isPhaseField() {}
func (ListText) isPhaseField()  {}
func (Parsed) isPhaseField()    {}
func (Malformed) isPhaseField() {}

func (Missing) Values() []int   { return []int{} }
func (Malformed) Values() []int { return []int{} }

func (r RangeText) Values() []int {
	if !r.Valid() {
		return []int{}
	}
	out := make([]int, 0, r.End-r.Start+1)
	for i := r.Start; i <= r.End; i++ {
		out = append(out, i)
	}
	return out
}

// Valid reports whether the range can be expanded.
func (r RangeText) Valid() bool {
	return r.Start <= r.End && r.End-r.Start < MaxRangeSpan
}

func (l ListText) Values() []int {
	out := []int{}
	for _, tok := range strings.Split(string(l), ",") {
		if n, ok := toInt(strings.TrimSpace(tok)); ok {
			out = append(out, n)
		}
	}
	return out
}

func (p Parsed) Values() []int {
	return append([]int{}, p...)
}

// ParsePhaseField classifies a raw cell value.
func ParsePhaseField(v any) PhaseField {
	if v == nil {
		return Missing{}
	}
	if s, ok := v.(string); ok {
		return parsePhaseText(s)
	}
	if items, ok := sliceItems(v); ok {
		return Parsed(intsFrom(items))
	}
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return ListText(fmt.Sprint(v))
	}
	return Malformed{Raw: fmt.Sprint(v)}
}

func parsePhaseText(s string) PhaseField {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing{}
	}
	if strings.HasPrefix(s, "[") {
		var items []any
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return Malformed{Raw: s}
		}
		return Parsed(intsFrom(items))
	}
	if m := rangePattern.FindStringSubmatch(s); m != nil {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		r := RangeText{Start: start, End: end}
		if err1 != nil || err2 != nil || !r.Valid() {
			return Malformed{Raw: s}
		}
		return r
	}
	return ListText(s)
}

// Phases is the canonical normalizer for phase and slot fields.
func Phases(v any) []int {
	return ParsePhaseField(v).Values()
}

// IsArray reports whether v is an array value or text that decodes to a
// JSON array.
func IsArray(v any) bool {
	if s, ok := v.(string); ok {
		var items []any
		return json.Unmarshal([]byte(strings.TrimSpace(s)), &items) == nil && items != nil
	}
	_, ok := sliceItems(v)
	return ok
}

func sliceItems(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func intsFrom(items []any) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		f, ok := Number(it)
		if !ok || f != math.Trunc(f) {
			continue
		}
		if s, isText := it.(string); isText && strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, int(f))
	}
	return out
}

func toInt(tok string) (int, bool) {
	if tok == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
