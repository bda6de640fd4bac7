package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// FromMap decodes a loosely typed record such as a row of a rules file.
// Numeric fields given as text and task lists given as comma separated text
// are accepted. A record with an unrecognised type decodes to Unknown
// without error.
func FromMap(m map[string]any) (Rule, error) {
	id := strings.TrimSpace(fmt.Sprint(valueOr(m["id"], "")))
	kind := strings.TrimSpace(fmt.Sprint(valueOr(m["type"], "")))
	var (
		r   Rule
		err error
	)
	switch Type(kind) {
	case TypeCoRun:
		var c CoRun
		err = decode(m, &c)
		for i := range c.Tasks {
			c.Tasks[i] = strings.TrimSpace(c.Tasks[i])
		}
		r = c
	case TypeSlotRestriction:
		var s SlotRestriction
		err = decode(m, &s)
		s.GroupTag = strings.TrimSpace(s.GroupTag)
		r = s
	case TypeLoadLimit:
		var l LoadLimit
		err = decode(m, &l)
		l.WorkerGroup = strings.TrimSpace(l.WorkerGroup)
		r = l
	default:
		return Unknown{ID: id, Kind: kind, Fields: m}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s rule %q: %w", kind, id, err)
	}
	return r, nil
}

// FromMaps decodes a list of records. Records that fail to decode are kept
// as Unknown carrying the decode error so that one bad record never hides
// the others.
func FromMaps(ms []map[string]any) []Rule {
	out := make([]Rule, 0, len(ms))
	for _, m := range ms {
		r, err := FromMap(m)
		if err != nil {
			r = Unknown{
				ID:     strings.TrimSpace(fmt.Sprint(valueOr(m["id"], ""))),
				Kind:   strings.TrimSpace(fmt.Sprint(valueOr(m["type"], ""))),
				Reason: err.Error(),
				Fields: m,
			}
		}
		out = append(out, r)
	}
	return out
}

// ToMap encodes r with its type discriminator.
func ToMap(r Rule) map[string]any {
	switch v := Canonical(r).(type) {
	case CoRun:
		return map[string]any{"id": v.ID, "type": string(TypeCoRun), "tasks": append([]string{}, v.Tasks...)}
	case SlotRestriction:
		return map[string]any{"id": v.ID, "type": string(TypeSlotRestriction), "groupTag": v.GroupTag, "minCommonSlots": v.MinCommonSlots}
	case LoadLimit:
		return map[string]any{"id": v.ID, "type": string(TypeLoadLimit), "workerGroup": v.WorkerGroup, "maxSlotsPerPhase": v.MaxSlotsPerPhase}
	case Unknown:
		out := make(map[string]any, len(v.Fields)+2)
		for k, f := range v.Fields {
			out[k] = f
		}
		out["id"] = v.ID
		out["type"] = v.Kind
		return out
	}
	return nil
}

// Unmarshal decodes a JSON array of rule records.
func Unmarshal(data []byte) ([]Rule, error) {
	var ms []map[string]any
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return FromMaps(ms), nil
}

// Marshal encodes rules as a JSON array.
func Marshal(rs []Rule) ([]byte, error) {
	ms := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		ms = append(ms, ToMap(r))
	}
	return json.Marshal(ms)
}

func (r CoRun) MarshalJSON() ([]byte, error)           { return json.Marshal(ToMap(r)) }
func (r SlotRestriction) MarshalJSON() ([]byte, error) { return json.Marshal(ToMap(r)) }
func (r LoadLimit) MarshalJSON() ([]byte, error)       { return json.Marshal(ToMap(r)) }
func (r Unknown) MarshalJSON() ([]byte, error)         { return json.Marshal(ToMap(r)) }

func decode(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

func valueOr(v any, def any) any {
	if v == nil {
		return def
	}
	return v
}
