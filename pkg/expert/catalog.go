package expert

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// unknownRank sorts categories outside the catalog after every catalog entry.
const unknownRank = 9999

// Entry pairs a canonical expertise category with its trigger phrases.
// Triggers are matched as lowercase substrings of normalized task text.
type Entry struct {
	Category string   `yaml:"category"`
	Triggers []string `yaml:"triggers"`
}

// Catalog is an ordered, read-only mapping from category to trigger phrases.
// The declaration order defines the canonical ranking used for output
// ordering and tie-breaking. Safe for concurrent reads.
type Catalog struct {
	entries []Entry
	rank    map[string]int
}

// NewCatalog builds a catalog from entries, preserving their order.
// Trigger phrases are normalized once at construction.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		rank:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		category := Normalize(e.Category)
		if category == "" {
			continue
		}
		if _, dup := c.rank[category]; dup {
			continue
		}
		triggers := make([]string, 0, len(e.Triggers))
		for _, t := range e.Triggers {
			if t = Normalize(t); t != "" {
				triggers = append(triggers, t)
			}
		}
		c.rank[category] = len(c.entries)
		c.entries = append(c.entries, Entry{Category: category, Triggers: triggers})
	}
	return c
}

// LoadCatalogFile reads an ordered catalog from a YAML file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no entries", path)
	}
	return NewCatalog(entries), nil
}

// Entries returns the catalog entries in declaration order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Categories returns the category names in declaration order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Category
	}
	return out
}

// Rank returns the position of category in declaration order, or a large
// sentinel for categories not in the catalog. Used for sort stability only,
// never for exclusion.
func (c *Catalog) Rank(category string) int {
	if r, ok := c.rank[Normalize(category)]; ok {
		return r
	}
	return unknownRank
}

// Has reports whether category is a canonical catalog category.
func (c *Catalog) Has(category string) bool {
	_, ok := c.rank[Normalize(category)]
	return ok
}

// Match returns every category with at least one trigger occurring as a
// substring of the normalized text, in declaration order.
func (c *Catalog) Match(text string) []string {
	t := Normalize(text)
	var found []string
	for _, e := range c.entries {
		for _, trigger := range e.Triggers {
			if strings.Contains(t, trigger) {
				found = append(found, e.Category)
				break
			}
		}
	}
	return found
}

// Normalize lowercases text and collapses runs of whitespace to single
// spaces. Category equality is defined over normalized strings.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// DefaultCatalog returns the built-in cross-domain catalog. It covers both
// technical and non-technical expertise so selections are not limited to
// software roles.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultEntries)
}

var defaultEntries = []Entry{
	{Category: "frontend", Triggers: []string{
		"frontend", "ui", "ux", "react", "vue", "css", "html", "javascript",
		"client", "bootstrap", "tailwind", "web ui",
	}},
	{Category: "backend", Triggers: []string{
		"backend", "api", "django", "fastapi", "flask", "server", "auth", "rest",
	}},
	{Category: "database", Triggers: []string{
		"database", "db", "sql", "postgres", "sqlite", "mongodb", "redis",
		"neo4j", "schema", "migration",
	}},
	{Category: "devops", Triggers: []string{
		"deploy", "docker", "kubernetes", "ci", "cd", "pipeline",
		"github actions", "aws", "gcp", "azure", "helm", "terraform",
		"prometheus", "grafana", "nginx",
	}},
	{Category: "security", Triggers: []string{
		"oauth", "jwt", "security", "sso", "vuln", "owasp", "secrets",
	}},
	{Category: "qa", Triggers: []string{
		"qa", "test", "pytest", "coverage", "unit", "integration", "selenium",
		"playwright", "quality",
	}},
	{Category: "ml", Triggers: []string{
		"ml", "ai", "model", "transformers", "huggingface", "langchain", "llm",
		"rag", "nlp",
	}},
	{Category: "product", Triggers: []string{
		"product", "requirements", "acceptance criteria", "story", "epic",
		"roadmap", "backlog",
	}},
	{Category: "design", Triggers: []string{
		"design", "figma", "wireframe", "prototype", "ux", "ui",
	}},
	{Category: "performance", Triggers: []string{
		"performance", "perf", "load", "scalability", "benchmark", "cache",
	}},
	{Category: "realtime", Triggers: []string{
		"websocket", "channels", "socket", "realtime", "stream",
	}},
	{Category: "observability", Triggers: []string{
		"logging", "monitoring", "sentry", "tracing", "opentelemetry",
	}},
	{Category: "knowledge_graph", Triggers: []string{
		"neo4j", "cypher", "graph", "ontology", "knowledge graph",
	}},
	{Category: "legal", Triggers: []string{
		"legal", "law", "contract", "gdpr", "privacy", "ip", "license",
		"trademark", "compliance",
	}},
	{Category: "finance", Triggers: []string{
		"finance", "budget", "budgeting", "accounting", "pricing", "cost",
		"roi", "revenue", "expense", "forecast", "valuation",
	}},
	{Category: "marketing", Triggers: []string{
		"marketing", "seo", "sem", "content", "campaign", "brand", "social",
		"advertising", "copy",
	}},
	{Category: "sales", Triggers: []string{
		"sales", "crm", "pipeline", "lead", "outreach", "negotiation", "deal",
	}},
	{Category: "hr", Triggers: []string{
		"hr", "hiring", "recruiting", "onboarding", "policy", "payroll",
		"benefits", "people",
	}},
	{Category: "operations", Triggers: []string{
		"operations", "process", "supply", "logistics", "procurement",
		"vendor", "inventory", "ops",
	}},
	{Category: "governance", Triggers: []string{
		"governance", "risk", "audit", "gxp", "sox", "gxp compliance",
	}},
	{Category: "healthcare", Triggers: []string{
		"healthcare", "medical", "clinical", "patient", "diagnosis",
		"treatment", "hipaa", "fda",
	}},
	{Category: "education", Triggers: []string{
		"education", "teaching", "curriculum", "training", "learning",
		"pedagogy",
	}},
	{Category: "research", Triggers: []string{
		"research", "experiment", "hypothesis", "analysis", "survey",
		"literature",
	}},
	{Category: "data_science", Triggers: []string{
		"data science", "analytics", "statistics", "modeling", "visualization",
		"hypothesis testing",
	}},
	{Category: "ethics", Triggers: []string{
		"ethics", "fairness", "bias", "responsible ai",
	}},
	{Category: "localization", Triggers: []string{
		"localization", "translation", "i18n", "l10n",
	}},
	{Category: "manufacturing", Triggers: []string{
		"manufacturing", "production", "quality control", "lean", "six sigma",
	}},
	{Category: "support", Triggers: []string{
		"support", "customer support", "helpdesk", "ticket", "csat",
	}},
}
