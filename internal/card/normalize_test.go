package card

import (
	"testing"

	"github.com/ppiankov/cardrisk/internal/hub"
)

func TestNormalizeLicense(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", "unknown"},
		{"apache2", "apache-2.0"},
		{"Apache 2", "apache-2.0"},
		{"APACHE-2.0", "apache-2.0"},
		{"MIT", "mit"},
		{"bsd", "bsd-3-clause"},
		{"bsd-3", "bsd-3-clause"},
		{"gpl", "gpl-3.0"},
		{"GPL-3", "gpl-3.0"},
		{"cc-by-nc", "cc-by-nc-4.0"},
		{"  mit  ", "mit"},
		// Unmapped values pass through normalized, not aliased
		{"llama3.1", "llama3.1"},
		{"My Custom License", "my-custom-license"},
	}

	for _, tc := range cases {
		if got := NormalizeLicense(tc.input); got != tc.want {
			t.Errorf("NormalizeLicense(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseParamsB(t *testing.T) {
	cases := []struct {
		name string
		text string
		want *float64
	}{
		{"plain", "This is a 7B model.", f(7)},
		{"decimal", "Weighs in at 13.5B parameters.", f(13.5)},
		{"spaced", "around 70 B parameters", f(70)},
		{"lowercase", "a 8b variant", f(8)},
		{"first match wins", "The 7B and 70B variants share a tokenizer.", f(7)},
		{"no match", "A small model with no stated size.", nil},
		{"not a size word", "Badger and BBQ do not count", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseParamsB(tc.text)
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("Expected nil, got %v", *got)
			case tc.want != nil && got == nil:
				t.Errorf("Expected %v, got nil", *tc.want)
			case tc.want != nil && got != nil && *tc.want != *got:
				t.Errorf("Expected %v, got %v", *tc.want, *got)
			}
		})
	}
}

func f(v float64) *float64 { return &v }

func TestSplitFrontMatter(t *testing.T) {
	text := "---\nlicense: mit\ntags:\n  - llama\n---\n# Title\nBody here.\n"

	fm, body := SplitFrontMatter(text)
	if fm == nil {
		t.Fatal("Expected front matter, got nil")
	}
	if fm["license"] != "mit" {
		t.Errorf("Unexpected license: %v", fm["license"])
	}
	if body != "# Title\nBody here.\n" {
		t.Errorf("Unexpected body: %q", body)
	}
}

func TestSplitFrontMatter_NoBlock(t *testing.T) {
	text := "# Title\nNo front matter here.\n"

	fm, body := SplitFrontMatter(text)
	if fm != nil {
		t.Errorf("Expected nil front matter, got %v", fm)
	}
	if body != text {
		t.Errorf("Expected body unchanged, got %q", body)
	}
}

func TestSplitFrontMatter_ByteOrderMark(t *testing.T) {
	text := "\uFEFF---\nlicense: mit\n---\nBody.\n"

	fm, body := SplitFrontMatter(text)
	if fm == nil || fm["license"] != "mit" {
		t.Fatalf("Expected front matter parsed despite the BOM, got %v", fm)
	}
	if body != "Body.\n" {
		t.Errorf("Unexpected body: %q", body)
	}
}

func TestSplitFrontMatter_Unclosed(t *testing.T) {
	text := "---\nlicense: mit\n# never closed\n"

	fm, body := SplitFrontMatter(text)
	if fm != nil {
		t.Errorf("Expected nil front matter for unclosed block, got %v", fm)
	}
	if body != text {
		t.Errorf("Expected body unchanged, got %q", body)
	}
}

func TestResolve_Precedence(t *testing.T) {
	structured := FromMap(map[string]any{"license": "apache-2.0"})
	frontMatter := FromMap(map[string]any{"license": "mit", "model_type": "llama"})

	if got := AsString(Resolve("license", structured, frontMatter)); got != "apache-2.0" {
		t.Errorf("Expected structured metadata to win, got %q", got)
	}
	if got := AsString(Resolve("model_type", structured, frontMatter)); got != "llama" {
		t.Errorf("Expected front matter fallback, got %q", got)
	}
	if got := Resolve("missing", structured, frontMatter); got != nil {
		t.Errorf("Expected nil for absent field, got %v", got)
	}
}

func TestResolve_EmptyValuesFallThrough(t *testing.T) {
	first := FromMap(map[string]any{"license": "", "tags": []any{}})
	second := FromMap(map[string]any{"license": "mit", "tags": []any{"llama"}})

	if got := AsString(Resolve("license", first, second)); got != "mit" {
		t.Errorf("Expected empty string to fall through, got %q", got)
	}
	tags := AsStringList(Resolve("tags", first, second))
	if len(tags) != 1 || tags[0] != "llama" {
		t.Errorf("Expected empty list to fall through, got %v", tags)
	}
}

func TestAsStringList(t *testing.T) {
	if got := AsStringList(nil); len(got) != 0 {
		t.Errorf("Expected empty list for nil, got %v", got)
	}

	got := AsStringList("en")
	if len(got) != 1 || got[0] != "en" {
		t.Errorf("Expected scalar coerced to single-element list, got %v", got)
	}

	got = AsStringList([]any{"c4", "wikipedia"})
	if len(got) != 2 || got[0] != "c4" || got[1] != "wikipedia" {
		t.Errorf("Expected list passed through in order, got %v", got)
	}
}

func TestAsMetrics(t *testing.T) {
	metrics := AsMetrics([]any{
		"accuracy",
		map[string]any{"name": "perplexity", "value": 3.2},
		map[string]any{"value": 1.0}, // record without a name
	})

	if len(metrics) != 3 {
		t.Fatalf("Expected 3 metrics, got %d", len(metrics))
	}
	if metrics[0].Name != "accuracy" || metrics[0].Value != nil {
		t.Errorf("Unexpected bare-string metric: %+v", metrics[0])
	}
	if metrics[1].Name != "perplexity" || metrics[1].Value == nil || *metrics[1].Value != 3.2 {
		t.Errorf("Unexpected record metric: %+v", metrics[1])
	}
	if metrics[2].Name != "" {
		t.Errorf("Expected empty name for nameless record, got %q", metrics[2].Name)
	}
}

func TestBuildRecord(t *testing.T) {
	info := &hub.ModelInfo{
		ID:           "owner/name",
		SHA:          "abc123",
		LastModified: "2024-07-23T15:42:00.000Z",
		Downloads:    5000,
		Likes:        250,
		CardData: map[string]any{
			"license":  "apache2",
			"datasets": []any{"c4"},
		},
	}
	cardText := "---\nlicense: mit\npipeline_tag: text-generation\nlanguage: en\n---\nA 7B parameter model.\n"

	rec := BuildRecord("owner/name", info, cardText)

	// cardData wins over front matter
	if rec.License != "apache2" {
		t.Errorf("Expected cardData license, got %q", rec.License)
	}
	// front matter fills what cardData lacks
	if rec.Pipeline != "text-generation" {
		t.Errorf("Expected front matter pipeline, got %q", rec.Pipeline)
	}
	if len(rec.Languages) != 1 || rec.Languages[0] != "en" {
		t.Errorf("Expected scalar language coerced to list, got %v", rec.Languages)
	}
	if len(rec.Datasets) != 1 || rec.Datasets[0] != "c4" {
		t.Errorf("Unexpected datasets: %v", rec.Datasets)
	}
	if rec.ParamsB == nil || *rec.ParamsB != 7 {
		t.Errorf("Expected 7B parsed from card text, got %v", rec.ParamsB)
	}
	if rec.CardText != cardText {
		t.Errorf("Expected card text kept verbatim, got %q", rec.CardText)
	}
	if rec.SHA != "abc123" || rec.Downloads30d != 5000 || rec.Likes != 250 {
		t.Errorf("Hub fields not carried over: %+v", rec)
	}
}

func TestBuildRecord_FrontMatterStaysInCardText(t *testing.T) {
	cardText := "---\nlicense: mit\nextra: unrestricted 8B\n---\nBody only.\n"

	rec := BuildRecord("owner/name", &hub.ModelInfo{}, cardText)

	// The raw text survives whole, so keyword and size scans see the
	// front matter block too
	if rec.CardText != cardText {
		t.Errorf("Expected the front matter block retained, got %q", rec.CardText)
	}
	if rec.ParamsB == nil || *rec.ParamsB != 8 {
		t.Errorf("Expected 8B found inside the front matter, got %v", rec.ParamsB)
	}
	if rec.License != "mit" {
		t.Errorf("Expected front matter license parsed, got %q", rec.License)
	}
}
