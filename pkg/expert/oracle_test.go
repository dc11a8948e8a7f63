package expert

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type stubOracle struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (o *stubOracle) Generate(_ context.Context, prompt string) (string, error) {
	o.calls++
	o.prompt = prompt
	if o.err != nil {
		return "", o.err
	}
	return o.response, nil
}

func (o *stubOracle) Name() string { return "stub" }

func TestParseBullets(t *testing.T) {
	raw := "- Frontend\n* Backend\n1. Database\nNot a bullet"
	got := parseBullets(raw)
	want := []string{"Frontend", "Backend", "Database"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseBullets = %v, want %v", got, want)
	}
}

func TestParseBulletsVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"unicode bullet", "• Legal Counsel", []string{"Legal Counsel"}},
		{"en dash", "– Finance", []string{"Finance"}},
		{"escaped dash", `\- Escaped`, []string{"Escaped"}},
		{"numbered paren", "2) Second item", []string{"Second item"}},
		{"indented", "   - padded  ", []string{"padded"}},
		{"no space after marker", "-nospace", nil},
		{"blank lines", "\n\n- only\n\n", []string{"only"}},
		{"empty input", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseBullets(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseBullets(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMapRole(t *testing.T) {
	c := DefaultCatalog()

	spec, ok := mapRole(c, "backend")
	if !ok || spec.Expertise != "backend" || spec.Confidence != 0.9 || spec.Source != SourceLLM {
		t.Fatalf("exact category: got %+v ok=%v", spec, ok)
	}

	// Exact trigger match resolves to the owning category at 0.6.
	spec, ok = mapRole(c, "postgres")
	if !ok || spec.Expertise != "database" || spec.Confidence != 0.6 {
		t.Fatalf("trigger match: got %+v ok=%v", spec, ok)
	}

	// Role contained in a longer trigger phrase also matches at 0.6.
	spec, ok = mapRole(c, "acceptance")
	if !ok || spec.Expertise != "product" || spec.Confidence != 0.6 {
		t.Fatalf("substring match: got %+v ok=%v", spec, ok)
	}

	// "ui" triggers both frontend and design; the first catalog category wins.
	spec, ok = mapRole(c, "ui")
	if !ok || spec.Expertise != "frontend" {
		t.Fatalf("ambiguous role should resolve to first category, got %+v", spec)
	}

	if _, ok = mapRole(c, "market research analyst"); ok {
		t.Fatal("unknown role should not map")
	}
}

func TestOracleSpecsDisabled(t *testing.T) {
	specs, dbg := oracleSpecs(context.Background(), DefaultCatalog(), "text", nil)
	if specs != nil {
		t.Fatalf("expected nil specs, got %v", specs)
	}
	if dbg.Provider != "" || dbg.Prompt != "" || dbg.Raw != "" || dbg.Parsed != nil {
		t.Fatalf("expected empty debug, got %+v", dbg)
	}
}

func TestOracleSpecsUnknownRolePreserved(t *testing.T) {
	oracle := &stubOracle{response: "- Market Research Analyst"}
	specs, dbg := oracleSpecs(context.Background(), DefaultCatalog(), "run a customer study", oracle)
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %v", specs)
	}
	if specs[0].Expertise != "market research analyst" || specs[0].Confidence != 0.5 || specs[0].Source != SourceLLM {
		t.Fatalf("unexpected spec %+v", specs[0])
	}
	if dbg.Provider != "stub" || dbg.Raw != "- Market Research Analyst" {
		t.Fatalf("unexpected debug %+v", dbg)
	}
	if !reflect.DeepEqual(dbg.Parsed, []string{"Market Research Analyst"}) {
		t.Fatalf("unexpected parsed %v", dbg.Parsed)
	}
}

func TestOracleSpecsDeduplicatesByConfidence(t *testing.T) {
	// "database" maps exact (0.9), "postgres" maps fuzzy to database (0.6):
	// a single entry survives carrying the higher confidence.
	oracle := &stubOracle{response: "- postgres\n- database"}
	specs, _ := oracleSpecs(context.Background(), DefaultCatalog(), "", oracle)
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %v", specs)
	}
	if specs[0].Expertise != "database" || specs[0].Confidence != 0.9 {
		t.Fatalf("expected database at 0.9, got %+v", specs[0])
	}
}

func TestOracleSpecsFailure(t *testing.T) {
	oracle := &stubOracle{err: errors.New("boom")}
	specs, dbg := oracleSpecs(context.Background(), DefaultCatalog(), "text", oracle)
	if specs != nil {
		t.Fatalf("expected nil specs on failure, got %v", specs)
	}
	// The prompt is preserved for diagnostics; raw/parsed stay empty.
	if dbg.Provider != "stub" || dbg.Prompt == "" {
		t.Fatalf("debug should keep provider and prompt: %+v", dbg)
	}
	if dbg.Raw != "" || dbg.Parsed != nil {
		t.Fatalf("raw/parsed should be empty on failure: %+v", dbg)
	}
}

func TestBuildPromptCitesCatalog(t *testing.T) {
	c := DefaultCatalog()
	prompt := buildPrompt(c, "some input")
	for _, want := range []string{"frontend", "legal", "some input", "bullet lines"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
