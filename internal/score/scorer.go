package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/cardrisk/internal/card"
	"github.com/ppiankov/cardrisk/internal/model"
)

// Dimensions lists the six risk dimensions in report order.
var Dimensions = []string{
	"license",
	"data_transparency",
	"security_provenance",
	"maturity_support",
	"compliance_alignment",
	"technical_feasibility",
}

// evalFunc evaluates one dimension. Every evaluator is pure and total: it
// always returns a score in {0,1,2} and a rationale naming the rule that
// fired, for any record and policy.
type evalFunc func(rec *model.ModelRecord, pol *model.Policy) (int, string)

// evaluators is the dispatch table. Adding a dimension means adding a row
// here and a name in Dimensions; nothing else changes.
var evaluators = map[string]evalFunc{
	"license":               evalLicense,
	"data_transparency":     evalDataTransparency,
	"security_provenance":   evalSecurityProvenance,
	"maturity_support":      evalMaturitySupport,
	"compliance_alignment":  evalComplianceAlignment,
	"technical_feasibility": evalTechnicalFeasibility,
}

// Scorer evaluates model records against a risk policy.
type Scorer struct{}

// NewScorer creates a new scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score runs every dimension evaluator and aggregates the weighted result.
func (s *Scorer) Score(rec *model.ModelRecord, pol *model.Policy) model.ScoreReport {
	details := make(map[string]model.DimensionResult, len(Dimensions))
	total := 0
	maxTotal := 0

	for _, dim := range Dimensions {
		w := pol.Weight(dim)
		raw, rationale := evaluators[dim](rec, pol)

		details[dim] = model.DimensionResult{
			Score:     raw,
			Rationale: rationale,
			Weight:    w,
			Weighted:  raw * w,
		}
		total += raw * w
		maxTotal += model.ScoreRed * w
	}

	pct := 0.0
	if maxTotal > 0 {
		pct = float64(total) / float64(maxTotal)
	}

	// Band thresholds are fixed constants, not policy fields.
	band := model.BandRed
	switch {
	case pct <= 0.25:
		band = model.BandGreen
	case pct <= 0.6:
		band = model.BandYellow
	}

	return model.ScoreReport{
		RepoID: rec.RepoID,
		Overall: model.Overall{
			Score:   total,
			Max:     maxTotal,
			Band:    band,
			Percent: math.Round(pct*1000) / 10,
		},
		Details: details,
	}
}

// evalLicense buckets the normalized license. Anything not matched by the
// allow or warn lists scores red: an unknown license is treated like a
// denied one, not a caution.
func evalLicense(rec *model.ModelRecord, pol *model.Policy) (int, string) {
	lic := card.NormalizeLicense(rec.License)

	if containsNormalized(pol.License.Allow, lic) {
		return model.ScoreGreen, fmt.Sprintf("License %s is allowed", lic)
	}
	if containsNormalized(pol.License.Warn, lic) {
		return model.ScoreYellow, fmt.Sprintf("License %s requires caution", lic)
	}
	if containsNormalized(pol.License.Deny, lic) {
		return model.ScoreRed, fmt.Sprintf("License %s is not permitted", lic)
	}
	return model.ScoreRed, "License unknown or missing"
}

// evalDataTransparency checks whether any required disclosure field is
// present. Absence is a caution, never a hard block.
func evalDataTransparency(rec *model.ModelRecord, pol *model.Policy) (int, string) {
	for _, field := range pol.DataTransparency.RequireAnyOf {
		if rec.HasField(field) {
			return model.ScoreGreen, "Datasets/training data disclosed"
		}
	}
	return model.ScoreYellow, "Data sources unclear"
}

// evalSecurityProvenance trusts listed owners outright, accepts healthy
// community adoption with a caution, and flags everything else.
func evalSecurityProvenance(rec *model.ModelRecord, pol *model.Policy) (int, string) {
	owner := rec.Owner()
	for _, trusted := range pol.SecurityProvenance.TrustedOwners {
		if strings.EqualFold(trusted, owner) {
			return model.ScoreGreen, fmt.Sprintf("Trusted owner %s", owner)
		}
	}
	if rec.Downloads30d >= pol.SecurityProvenance.MinDownloads30d {
		return model.ScoreYellow, fmt.Sprintf("Community model with healthy adoption (%d downloads/30d)", rec.Downloads30d)
	}
	return model.ScoreRed, "Low-signal provenance (owner not trusted, low adoption)"
}

// evalMaturitySupport looks for any activity signal.
func evalMaturitySupport(rec *model.ModelRecord, _ *model.Policy) (int, string) {
	if rec.LastModified != "" || rec.Likes > 200 {
		return model.ScoreGreen, "Active or well-liked repository"
	}
	return model.ScoreYellow, "Limited maturity signals"
}

// evalComplianceAlignment scans the card text for policy keywords. A bad
// keyword always wins over an ok keyword.
func evalComplianceAlignment(rec *model.ModelRecord, pol *model.Policy) (int, string) {
	text := strings.ToLower(rec.CardText)

	for _, kw := range pol.ComplianceAlignment.KeywordsBad {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return model.ScoreRed, "Problematic compliance language in card"
		}
	}
	for _, kw := range pol.ComplianceAlignment.KeywordsOK {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return model.ScoreGreen, "Mentions compliance considerations"
		}
	}
	return model.ScoreYellow, "No explicit compliance guidance in card"
}

// evalTechnicalFeasibility compares the parsed parameter count against the
// size thresholds. The max check is strictly-greater-than: a model exactly
// at the max threshold falls through to the warn check.
func evalTechnicalFeasibility(rec *model.ModelRecord, pol *model.Policy) (int, string) {
	if rec.ParamsB == nil {
		return model.ScoreYellow, "Model size not stated; capacity risk unknown"
	}
	p := *rec.ParamsB
	if p > pol.TechnicalFeasibility.MaxParamsB {
		return model.ScoreRed, fmt.Sprintf("Very large model (~%gB) may exceed infra appetite", p)
	}
	if p > pol.TechnicalFeasibility.WarnParamsB {
		return model.ScoreYellow, fmt.Sprintf("Large model (~%gB); review infra cost/latency", p)
	}
	return model.ScoreGreen, fmt.Sprintf("Model size (~%gB) within appetite", p)
}

// containsNormalized matches a normalized license against a policy list,
// normalizing list entries the same way so hand-edited policies with odd
// casing or spacing still match.
func containsNormalized(list []string, normalized string) bool {
	for _, entry := range list {
		if card.NormalizeLicense(entry) == normalized {
			return true
		}
	}
	return false
}
