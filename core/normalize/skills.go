package normalize

import (
	"fmt"
	"strings"
)

// Skills normalizes a skill field into lower-cased, trimmed, non-empty
// tokens. Arrays are mapped element-wise; anything else is treated as comma
// separated text.
func Skills(v any) []string {
	out := []string{}
	if v == nil {
		return out
	}
	if s, ok := v.(string); ok {
		return appendSkills(out, strings.Split(s, ","))
	}
	if items, ok := sliceItems(v); ok {
		toks := make([]string, 0, len(items))
		for _, it := range items {
			if it == nil {
				continue
			}
			toks = append(toks, fmt.Sprint(it))
		}
		return appendSkills(out, toks)
	}
	return appendSkills(out, strings.Split(fmt.Sprint(v), ","))
}

func appendSkills(out []string, toks []string) []string {
	for _, t := range toks {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
