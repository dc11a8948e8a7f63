package expert

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// FallbackExpertise is the guaranteed default when nothing matches.
const FallbackExpertise = "generalist"

// Selector combines heuristic keyword matching with optional oracle-driven
// extraction. It holds no mutable state and is safe for concurrent use,
// provided the oracle handle is.
type Selector struct {
	catalog *Catalog
	oracle  Oracle
	log     *zap.Logger
}

// NewSelector creates a selector. A nil catalog uses the built-in default;
// a nil oracle disables the oracle path; a nil logger discards logs.
func NewSelector(catalog *Catalog, oracle Oracle, log *zap.Logger) *Selector {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{catalog: catalog, oracle: oracle, log: log}
}

// Catalog returns the selector's catalog.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// SelectFromTasks identifies the experts needed for the given tasks.
// Heuristic and oracle candidates are merged per category, with the oracle
// replacing an entry only on strictly greater confidence. The result is
// ordered by catalog rank, unknown categories after all catalog ones, and
// is never empty: a generalist is returned when nothing matches. Oracle
// failures never propagate.
func (s *Selector) SelectFromTasks(ctx context.Context, tasks []string) Selection {
	text := strings.Join(tasks, "\n")

	heur := heuristicSpecs(s.catalog, text)
	oracleOut, oracleDbg := oracleSpecs(ctx, s.catalog, text, s.oracle)

	order := make([]string, 0, len(heur)+len(oracleOut))
	combined := make(map[string]Spec, len(heur)+len(oracleOut))
	for _, spec := range heur {
		order = append(order, spec.Expertise)
		combined[spec.Expertise] = spec
	}
	for _, spec := range oracleOut {
		cur, seen := combined[spec.Expertise]
		if !seen {
			order = append(order, spec.Expertise)
			combined[spec.Expertise] = spec
		} else if spec.Confidence > cur.Confidence {
			combined[spec.Expertise] = spec
		}
	}

	final := make([]Spec, 0, len(order))
	for _, name := range order {
		final = append(final, combined[name])
	}
	sort.SliceStable(final, func(i, j int) bool {
		return s.catalog.Rank(final[i].Expertise) < s.catalog.Rank(final[j].Expertise)
	})

	if len(final) == 0 {
		final = []Spec{{
			Expertise:  FallbackExpertise,
			Confidence: verbatimConfidence,
			Source:     SourceFallback,
		}}
	}

	heurNames := make([]string, len(heur))
	for i, spec := range heur {
		heurNames[i] = spec.Expertise
	}
	finalNames := make([]string, len(final))
	for i, spec := range final {
		finalNames[i] = spec.Expertise
	}

	s.log.Debug("experts selected",
		zap.Strings("heuristic", heurNames),
		zap.Strings("final", finalNames),
		zap.String("oracle", oracleDbg.Provider),
	)

	return Selection{
		Experts: final,
		Debug: Debug{
			Heuristic: heurNames,
			Oracle:    oracleDbg,
			Final:     finalNames,
		},
	}
}
