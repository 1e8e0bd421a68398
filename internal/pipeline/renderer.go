package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/cardrisk/internal/model"
	"github.com/ppiankov/cardrisk/internal/score"
)

// Renderer turns records and score reports into Markdown and JSON.
// The Markdown builders are pure: identical input yields byte-identical
// output.
type Renderer struct {
	endpoint string
}

// NewRenderer creates a renderer linking repos against the given hub
// endpoint.
func NewRenderer(endpoint string) *Renderer {
	return &Renderer{endpoint: endpoint}
}

// Slug derives the output file stem from a repo id.
func Slug(repoID string) string {
	return strings.ReplaceAll(repoID, "/", "__")
}

// SummaryMarkdown renders the fixed-template model summary. The card text
// is trusted Markdown and embedded verbatim, no escaping.
func (r *Renderer) SummaryMarkdown(rec *model.ModelRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s – Model Summary\n\n", rec.RepoID)
	fmt.Fprintf(&b, "**Repo:** %s/%s  \n", r.endpoint, rec.RepoID)
	fmt.Fprintf(&b, "**Last modified:** %s  \n", orDash(rec.LastModified))
	fmt.Fprintf(&b, "**SHA (main):** %s  \n", orDash(rec.SHA))
	fmt.Fprintf(&b, "**Downloads (30d):** %d  \n\n", rec.Downloads30d)

	b.WriteString("## Key Facts\n")
	fmt.Fprintf(&b, "- **License:** %s\n", orDash(rec.License))
	fmt.Fprintf(&b, "- **Pipeline tag:** %s\n", orDash(rec.Pipeline))
	fmt.Fprintf(&b, "- **Library:** %s\n", orDash(rec.Library))
	fmt.Fprintf(&b, "- **Model type:** %s\n", orDash(rec.ModelType))
	fmt.Fprintf(&b, "- **Base model:** %s\n", orDash(rec.BaseModel))
	fmt.Fprintf(&b, "- **Languages:** %s\n", orDash(strings.Join(rec.Languages, ", ")))
	fmt.Fprintf(&b, "- **Tags:** %s\n", orDash(strings.Join(rec.Tags, ", ")))
	fmt.Fprintf(&b, "- **Datasets:** %s\n", orDash(strings.Join(rec.Datasets, ", ")))
	fmt.Fprintf(&b, "- **Reported metrics:** %s\n\n", orDash(joinMetrics(rec.Metrics)))

	b.WriteString("## Full Model Card\n")
	b.WriteString(rec.CardText)
	b.WriteString("\n")

	return b.String()
}

// ScorecardMarkdown renders the risk scorecard: overall verdict plus one
// bullet per dimension in fixed order.
func (r *Renderer) ScorecardMarkdown(report *model.ScoreReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Risk Scorecard – %s\n\n", report.RepoID)
	fmt.Fprintf(&b, "**Overall:** %s  (%d / %d, %.1f%%)\n\n",
		report.Overall.Band, report.Overall.Score, report.Overall.Max, report.Overall.Percent)

	b.WriteString("## Breakdown\n")
	for _, dim := range score.Dimensions {
		d, ok := report.Details[dim]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %s (w=%d; weighted=%d) — %s\n",
			titleize(dim), d.Band(), d.Weight, d.Weighted, d.Rationale)
	}

	return b.String()
}

// ScorecardJSON renders the machine-readable report.
func (r *Renderer) ScorecardJSON(report *model.ScoreReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteSummary writes the model summary next to dir as <owner__name>.md.
func (r *Renderer) WriteSummary(rec *model.ModelRecord, dir string) (string, error) {
	path := filepath.Join(dir, Slug(rec.RepoID)+".md")
	if err := os.WriteFile(path, []byte(r.SummaryMarkdown(rec)), 0644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

// WriteScorecard writes both scorecard forms, returning their paths.
func (r *Renderer) WriteScorecard(report *model.ScoreReport, dir string) (mdPath, jsonPath string, err error) {
	slug := Slug(report.RepoID)

	mdPath = filepath.Join(dir, slug+"_risk.md")
	if err = os.WriteFile(mdPath, []byte(r.ScorecardMarkdown(report)), 0644); err != nil {
		return "", "", fmt.Errorf("write scorecard: %w", err)
	}

	data, err := r.ScorecardJSON(report)
	if err != nil {
		return "", "", err
	}
	jsonPath = filepath.Join(dir, slug+"_risk.json")
	if err = os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("write scorecard JSON: %w", err)
	}

	return mdPath, jsonPath, nil
}

// ConsoleVerdict formats the one-line terminal verdict.
func ConsoleVerdict(report *model.ScoreReport) string {
	glyph := map[model.Band]string{
		model.BandGreen:  "🟢",
		model.BandYellow: "🟡",
		model.BandRed:    "🔴",
	}[report.Overall.Band]

	return fmt.Sprintf("%s %s  (%d / %d, %.1f%%)",
		glyph, report.Overall.Band, report.Overall.Score, report.Overall.Max, report.Overall.Percent)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func joinMetrics(metrics []model.Metric) string {
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}

// titleize turns "data_transparency" into "Data Transparency".
func titleize(dim string) string {
	words := strings.Split(dim, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
