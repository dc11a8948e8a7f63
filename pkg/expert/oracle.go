package expert

import (
	"context"
	"regexp"
	"strings"
)

// Oracle is the generative backend consulted for open-ended role
// extraction. Implementations must be safe for concurrent use or callers
// must supply a fresh handle per selection.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

const (
	exactConfidence    = 0.9
	fuzzyConfidence    = 0.6
	verbatimConfidence = 0.5
)

// bulletLine matches "- x", "* x", "• x", "– x" (optionally escaped) and
// numbered forms "1. x" / "1) x". The payload is capture group 1.
var bulletLine = regexp.MustCompile(`^(?:\\?[-*•–]|[0-9]+[.)])\s+(.*)$`)

// parseBullets extracts the payloads of bullet-like lines, discarding
// everything else including blank lines.
func parseBullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		m := bulletLine.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out
}

// buildPrompt asks the oracle for a bulleted role list, citing the catalog
// as a hint for canonical names.
func buildPrompt(c *Catalog, text string) string {
	var sb strings.Builder
	sb.WriteString("You coordinate a cross-domain expert team (IT and non-IT). ")
	sb.WriteString("From the tasks/description, list the required expert roles as bullet lines starting with '- '. ")
	sb.WriteString("Prefer canonical roles from this catalog when applicable: ")
	sb.WriteString(strings.Join(c.Categories(), ", "))
	sb.WriteString(". If a suitable role is not in the catalog, output a precise freeform role.\n")
	sb.WriteString("Input:\n")
	sb.WriteString(text)
	sb.WriteString("\nReturn only the list of roles, one per line, no extra text.")
	return sb.String()
}

// mapRole resolves a normalized role string to a canonical Spec. An exact
// category name scores 0.9. A role equal to a trigger, or contained in a
// trigger phrase, scores 0.6 against the first catalog category satisfying
// the match. Unrecognized roles return ok=false.
func mapRole(c *Catalog, roleNorm string) (Spec, bool) {
	if c.Has(roleNorm) {
		return Spec{Expertise: roleNorm, Confidence: exactConfidence, Source: SourceLLM}, true
	}
	for _, e := range c.Entries() {
		if roleNorm == e.Category {
			return Spec{Expertise: e.Category, Confidence: fuzzyConfidence, Source: SourceLLM}, true
		}
		for _, trigger := range e.Triggers {
			if roleNorm == trigger || strings.Contains(trigger, roleNorm) {
				return Spec{Expertise: e.Category, Confidence: fuzzyConfidence, Source: SourceLLM}, true
			}
		}
	}
	return Spec{}, false
}

// oracleSpecs asks the oracle for roles and maps them back to catalog
// categories. Unknown non-empty roles are preserved verbatim so selections
// are not limited to the catalog. Oracle failures are swallowed: the debug
// record keeps whatever was populated and the candidate list is nil.
func oracleSpecs(ctx context.Context, c *Catalog, text string, oracle Oracle) ([]Spec, OracleDebug) {
	var dbg OracleDebug
	if oracle == nil {
		return nil, dbg
	}
	dbg.Provider = oracle.Name()

	prompt := buildPrompt(c, text)
	dbg.Prompt = prompt

	raw, err := oracle.Generate(ctx, prompt)
	if err != nil {
		return nil, dbg
	}
	dbg.Raw = raw

	roles := parseBullets(raw)
	dbg.Parsed = roles

	// De-duplicate by expertise, keeping the highest confidence and the
	// first-seen position.
	order := make([]string, 0, len(roles))
	best := make(map[string]Spec, len(roles))
	for _, role := range roles {
		roleNorm := Normalize(role)
		spec, ok := mapRole(c, roleNorm)
		if !ok {
			if roleNorm == "" {
				continue
			}
			spec = Spec{Expertise: roleNorm, Confidence: verbatimConfidence, Source: SourceLLM}
		}
		cur, seen := best[spec.Expertise]
		if !seen {
			order = append(order, spec.Expertise)
			best[spec.Expertise] = spec
		} else if spec.Confidence > cur.Confidence {
			best[spec.Expertise] = spec
		}
	}

	out := make([]Spec, 0, len(order))
	for _, name := range order {
		out = append(out, best[name])
	}
	return out, dbg
}
