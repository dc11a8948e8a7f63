package expert

// Source identifies which extractor produced a Spec.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceLLM       Source = "llm"
	SourceFallback  Source = "fallback"
)

// Spec describes one candidate or selected expert.
type Spec struct {
	Expertise  string  `json:"expertise"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// OracleDebug records the oracle exchange for a selection call. All fields
// stay empty when no oracle was consulted.
type OracleDebug struct {
	Provider string   `json:"provider,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Raw      string   `json:"raw,omitempty"`
	Parsed   []string `json:"parsed,omitempty"`
}

// Debug is the diagnostic record returned alongside every selection,
// sufficient for a caller to audit why each expert was chosen.
type Debug struct {
	Heuristic []string    `json:"heuristic"`
	Oracle    OracleDebug `json:"llm"`
	Final     []string    `json:"final"`
}

// Selection is the result of one classification call. Experts is never
// empty and never contains two entries with the same expertise.
type Selection struct {
	Experts []Spec `json:"experts"`
	Debug   Debug  `json:"debug"`
}
