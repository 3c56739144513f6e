package refstore

import "strings"

// NameOrder controls whether a rendered name puts family name first
// (the default CSL "sort" order) or given-name-first ("display" order).
// Mirrors the teacher's per-mode dispatch in schema/identifier.go
// (NormalizeIdentifierName switches on GeneratorMode); here the switch
// is on locale script instead of SQL dialect, per spec.md §9(c): Latin
// and Cyrillic scripts get family/given reordering with non-dropping
// particle demotion, anything else falls back to "family, given".
type NameOrder int

const (
	OrderSort NameOrder = iota
	OrderDisplay
)

// Script is a coarse classification of which particle-ordering rules
// apply to a name, per spec.md §9(c).
type Script int

const (
	ScriptLatinOrCyrillic Script = iota
	ScriptOther
)

// DetectScript inspects the family name's first rune and classifies it.
// Non-Latin/Cyrillic scripts always fall back to "family, given" order
// regardless of the requested NameOrder, matching the documented
// under-specification in spec.md §9(c).
func DetectScript(n Name) Script {
	s := n.Family
	if s == "" {
		s = n.Literal
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			return ScriptLatinOrCyrillic
		case r >= 0x0400 && r <= 0x04FF: // Cyrillic block
			return ScriptLatinOrCyrillic
		case r == ' ':
			continue
		default:
			return ScriptOther
		}
	}
	return ScriptLatinOrCyrillic
}

// Rendered formats a single name according to order, honoring
// demote-non-dropping-particle: when demoteNonDropping is true and the
// order is "sort", the non-dropping particle moves after the given name
// ("Gogh, Vincent van") instead of staying attached to the family name
// ("van Gogh, Vincent"). Display order always keeps it before the
// family name ("Vincent van Gogh").
func Rendered(n Name, order NameOrder, demoteNonDropping bool) string {
	if n.IsLiteral() {
		return n.Literal
	}
	if DetectScript(n) == ScriptOther {
		order = OrderSort
	}

	family := n.Family
	if n.NonDroppingParticle != "" && (!demoteNonDropping || order == OrderDisplay) {
		family = n.NonDroppingParticle + " " + family
	}
	given := n.Given
	if n.DroppingParticle != "" {
		given = strings.TrimSpace(given + " " + n.DroppingParticle)
	}
	if n.NonDroppingParticle != "" && demoteNonDropping && order == OrderSort {
		given = strings.TrimSpace(given + " " + n.NonDroppingParticle)
	}

	var b strings.Builder
	switch order {
	case OrderDisplay:
		if given != "" {
			b.WriteString(given)
			b.WriteByte(' ')
		}
		b.WriteString(family)
	default: // OrderSort
		b.WriteString(family)
		if given != "" {
			b.WriteString(", ")
			b.WriteString(given)
		}
	}
	if n.Suffix != "" {
		b.WriteString(", ")
		b.WriteString(n.Suffix)
	}
	return b.String()
}

// Initialize reduces a given name to its initials, one letter per space
// separated component, joined with terminator (typically ".").
func Initialize(given, terminator string) string {
	fields := strings.Fields(given)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		r := []rune(f)
		if len(r) == 0 {
			continue
		}
		parts = append(parts, string(r[0])+terminator)
	}
	return strings.Join(parts, " ")
}

// SortKey returns the string used to order a reference by this name in
// the bibliography: family name first, non-dropping particle attached,
// case-insensitive comparison is the caller's job (bibliography uses a
// real Unicode collator rather than folding here).
func SortKey(n Name) string {
	if n.IsLiteral() {
		return n.Literal
	}
	key := n.Family
	if n.NonDroppingParticle != "" {
		key = n.NonDroppingParticle + " " + key
	}
	return key
}
