package expert

// heuristicConfidence is the fixed weight for keyword-matched categories.
const heuristicConfidence = 0.7

// heuristicSpecs emits one Spec per catalog category with a trigger present
// in the normalized text. Results follow catalog declaration order and are
// duplicate-free by construction.
func heuristicSpecs(c *Catalog, text string) []Spec {
	var found []Spec
	for _, category := range c.Match(text) {
		found = append(found, Spec{
			Expertise:  category,
			Confidence: heuristicConfidence,
			Source:     SourceHeuristic,
		})
	}
	return found
}
