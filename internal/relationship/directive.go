package relationship

import (
	"regexp"
	"strconv"
	"strings"
)

// The model can end a reply with bracketed directives that mutate state
// before the reply is shown:
//
//	[AFFINITY: +5]  [TRUST: -3]  [SET_NAME: Kat]
//
// Unknown keys and malformed values are left in place untouched; only
// spans that parse cleanly are applied and stripped.

// DirectiveKind identifies one directive key.
type DirectiveKind string

const (
	DirectiveAffinity DirectiveKind = "AFFINITY"
	DirectiveTrust    DirectiveKind = "TRUST"
	DirectiveSetName  DirectiveKind = "SET_NAME"
)

// Directive is one parsed [KEY: value] span from a generated reply.
type Directive struct {
	Kind  DirectiveKind
	Delta int    // AFFINITY / TRUST
	Name  string // SET_NAME
}

var directivePattern = regexp.MustCompile(`\[(AFFINITY|TRUST|SET_NAME):\s*([^\]]*?)\s*\]`)

// ParseDirectives scans a generated reply for directive spans. It returns
// the typed directives in order of appearance and the reply with every
// matched span removed. A reply with no directives comes back unchanged.
func ParseDirectives(reply string) ([]Directive, string) {
	matches := directivePattern.FindAllStringSubmatchIndex(reply, -1)
	if len(matches) == 0 {
		return nil, reply
	}

	var directives []Directive
	var cleaned strings.Builder
	last := 0
	for _, m := range matches {
		kind := DirectiveKind(reply[m[2]:m[3]])
		value := reply[m[4]:m[5]]

		d, ok := buildDirective(kind, value)
		if !ok {
			continue
		}
		directives = append(directives, d)
		cleaned.WriteString(reply[last:m[0]])
		last = m[1]
	}
	cleaned.WriteString(reply[last:])

	return directives, strings.TrimSpace(cleaned.String())
}

func buildDirective(kind DirectiveKind, value string) (Directive, bool) {
	switch kind {
	case DirectiveAffinity, DirectiveTrust:
		n, err := strconv.Atoi(strings.TrimPrefix(value, "+"))
		if err != nil {
			return Directive{}, false
		}
		return Directive{Kind: kind, Delta: n}, true
	case DirectiveSetName:
		if value == "" {
			return Directive{}, false
		}
		return Directive{Kind: kind, Name: value}, true
	}
	return Directive{}, false
}

// DeltasFromDirectives sums the score directives into one Deltas batch.
// SET_NAME directives carry no score change and are skipped here.
func DeltasFromDirectives(directives []Directive) Deltas {
	var d Deltas
	for _, dir := range directives {
		switch dir.Kind {
		case DirectiveAffinity:
			d.Affinity += dir.Delta
		case DirectiveTrust:
			d.Trust += dir.Delta
		}
	}
	return d
}

// NameFromDirectives returns the last SET_NAME value, if any.
func NameFromDirectives(directives []Directive) (string, bool) {
	name := ""
	for _, dir := range directives {
		if dir.Kind == DirectiveSetName {
			name = dir.Name
		}
	}
	return name, name != ""
}
