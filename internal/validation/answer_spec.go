package validation

import (
	"regexp"
	"strings"
)

// AnswerSpec is one parsed answer line of a text-input question.
type AnswerSpec struct {
	Answer string `json:"answer"`
	Spec
}

var (
	kindSuffixRe    = regexp.MustCompile(`(?i)\[\s*kind\s*:\s*([\w-]+)\s*\]`)
	optionsSuffixRe = regexp.MustCompile(`(?i)\[\s*options\s*:\s*([^\]]*)\]`)
)

// ParseAnswerSpec parses `<answer> [kind: <kind>] [options: k=v,k=v,...]`.
// kind defaults to string. Option values are coerced to bool, float64 or
// string; a piece without '=' continues the previous value, so
// "units=kg,g" survives the comma split. For numeric-with-units the units
// value always ends up as a []string.
func ParseAnswerSpec(line string) AnswerSpec {
	rest := strings.TrimSpace(line)
	spec := AnswerSpec{Spec: Spec{Kind: KindString, Options: Options{}}}

	if m := kindSuffixRe.FindStringSubmatchIndex(rest); m != nil {
		spec.Kind = Kind(strings.ToLower(rest[m[2]:m[3]]))
		rest = rest[:m[0]] + rest[m[1]:]
	}

	var rawOptions string
	if m := optionsSuffixRe.FindStringSubmatchIndex(rest); m != nil {
		rawOptions = rest[m[2]:m[3]]
		rest = rest[:m[0]] + rest[m[1]:]
	}

	spec.Answer = strings.TrimSpace(rest)
	raw := parseOptionPairs(rawOptions)
	for k, v := range raw {
		spec.Options[k] = coerce(v)
	}

	if spec.Kind == KindNumericWithUnits {
		if u, ok := raw["units"]; ok {
			spec.Options["units"] = splitList(u)
		}
	}
	return spec
}

// Format renders the spec back into answer-line form.
func (a AnswerSpec) Format() string {
	var b strings.Builder
	b.WriteString(a.Answer)
	if a.Kind != "" && a.Kind != KindString {
		b.WriteString(" [kind: ")
		b.WriteString(string(a.Kind))
		b.WriteString("]")
	}
	if enc := a.Options.Encode(); enc != "" {
		b.WriteString(" [options: ")
		b.WriteString(enc)
		b.WriteString("]")
	}
	return b.String()
}

func parseOptionPairs(s string) map[string]string {
	out := map[string]string{}
	last := ""
	for _, piece := range strings.Split(s, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		k, v, ok := strings.Cut(piece, "=")
		if !ok {
			if last != "" {
				out[last] += "," + piece
			}
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
		last = k
	}
	return out
}
