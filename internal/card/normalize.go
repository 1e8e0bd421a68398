package card

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/cardrisk/internal/hub"
	"github.com/ppiankov/cardrisk/internal/model"
)

// Source yields the raw value for a logical field, reporting whether the
// field is present. Fields resolve through an ordered chain of sources;
// the first present, non-empty value wins.
type Source func(key string) (any, bool)

// FromMap adapts a parsed key-value block into a Source. A nil map is a
// valid source that never matches.
func FromMap(m map[string]any) Source {
	return func(key string) (any, bool) {
		if m == nil {
			return nil, false
		}
		v, ok := m[key]
		return v, ok
	}
}

// Resolve tries each source in order and returns the first present value.
// Empty strings and empty lists fall through to the next source.
func Resolve(key string, sources ...Source) any {
	for _, src := range sources {
		v, ok := src(key)
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t == "" {
				continue
			}
		case []any:
			if len(t) == 0 {
				continue
			}
		}
		return v
	}
	return nil
}

// AsString coerces a resolved value to a display string. Lists are joined
// with ", " (base_model is occasionally a list of merge parents).
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := AsString(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// AsStringList coerces a resolved value to a list: nil becomes empty, a
// scalar becomes a single-element list, a list passes through in order.
func AsStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, AsString(e))
		}
		return out
	case []string:
		return append([]string{}, t...)
	default:
		return []string{AsString(v)}
	}
}

// AsMetrics coerces a resolved metrics value. Entries are either bare
// strings or records with a "name" key and an optional numeric "value";
// a record without a name contributes an empty name.
func AsMetrics(v any) []model.Metric {
	var out []model.Metric
	for _, e := range AsRawList(v) {
		switch t := e.(type) {
		case string:
			out = append(out, model.Metric{Name: t})
		case map[string]any:
			m := model.Metric{Name: AsString(t["name"])}
			if f, ok := asFloat(t["value"]); ok {
				m.Value = &f
			}
			out = append(out, m)
		}
	}
	return out
}

// AsRawList applies the list coercion without flattening elements.
func AsRawList(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	default:
		return []any{v}
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// licenseAliases maps common shorthand a card author might write to the
// canonical identifier the policy lists use.
var licenseAliases = map[string]string{
	"apache2":      "apache-2.0",
	"apache-2":     "apache-2.0",
	"apache-2.0":   "apache-2.0",
	"mit":          "mit",
	"bsd":          "bsd-3-clause",
	"bsd-3":        "bsd-3-clause",
	"gpl":          "gpl-3.0",
	"gpl-3":        "gpl-3.0",
	"cc-by-nc":     "cc-by-nc-4.0",
	"cc-by-nc-4.0": "cc-by-nc-4.0",
}

// NormalizeLicense trims, lowercases, replaces spaces with hyphens and
// applies the alias table. Unmapped values pass through; an absent license
// normalizes to "unknown".
func NormalizeLicense(license string) string {
	if license == "" {
		return "unknown"
	}
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(license)), " ", "-")
	if canonical, ok := licenseAliases[s]; ok {
		return canonical
	}
	return s
}

// paramsPattern matches "7B", "13.5 B", "70b parameters" and the like.
// "B" gets used for other things too, so this can false-positive; the
// number is a heuristic, not an authoritative fact.
var paramsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*B\b`)

// ParseParamsB scans card text for a parameter count in billions. Returns
// nil when the card never states one.
func ParseParamsB(cardText string) *float64 {
	m := paramsPattern.FindStringSubmatch(cardText)
	if m == nil {
		return nil
	}
	var f float64
	if _, err := fmt.Sscanf(m[1], "%g", &f); err != nil {
		return nil
	}
	return &f
}

// SplitFrontMatter separates the YAML front matter block from the card
// body. Cards without front matter, or with a block that fails to parse,
// yield a nil map and the full text.
func SplitFrontMatter(cardText string) (map[string]any, string) {
	const fence = "---"

	trimmed := strings.TrimPrefix(cardText, "\uFEFF")
	if !strings.HasPrefix(trimmed, fence+"\n") && !strings.HasPrefix(trimmed, fence+"\r\n") {
		return nil, cardText
	}

	rest := trimmed[len(fence):]
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return nil, cardText
	}

	block := rest[:end]
	body := rest[end+len("\n"+fence):]
	// Drop the remainder of the closing fence line.
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, cardText
	}
	return fm, body
}

// BuildRecord assembles a ModelRecord from the hub metadata and raw card
// text. Every field resolves through the cardData → front matter chain.
// CardText keeps the raw text verbatim, front matter included: the rendered
// card embeds it unchanged, and the compliance and parameter scans cover
// the whole document.
func BuildRecord(repoID string, info *hub.ModelInfo, cardText string) *model.ModelRecord {
	frontMatter, _ := SplitFrontMatter(cardText)

	sources := []Source{FromMap(info.CardData), FromMap(frontMatter)}

	rec := &model.ModelRecord{
		RepoID:       repoID,
		License:      AsString(Resolve("license", sources...)),
		Pipeline:     AsString(Resolve("pipeline_tag", sources...)),
		Library:      AsString(Resolve("library_name", sources...)),
		ModelType:    AsString(Resolve("model_type", sources...)),
		BaseModel:    AsString(Resolve("base_model", sources...)),
		Tags:         AsStringList(Resolve("tags", sources...)),
		Datasets:     AsStringList(Resolve("datasets", sources...)),
		Languages:    AsStringList(Resolve("language", sources...)),
		Metrics:      AsMetrics(Resolve("metrics", sources...)),
		DataLicense:  AsString(Resolve("data_license", sources...)),
		LastModified: info.LastModified,
		SHA:          info.SHA,
		Downloads30d: info.Downloads,
		Likes:        info.Likes,
		CardText:     cardText,
		ParamsB:      ParseParamsB(cardText),
	}
	return rec
}
