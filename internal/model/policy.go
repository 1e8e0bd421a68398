package model

// Policy defines the configurable part of the risk evaluation: dimension
// weights plus the categorical rule data each dimension consumes.
// The JSON shape matches the risk_policy.json override document.
type Policy struct {
	Weights map[string]int `json:"weights"`

	License              LicensePolicy      `json:"license"`
	DataTransparency     TransparencyPolicy `json:"data_transparency"`
	SecurityProvenance   ProvenancePolicy   `json:"security_provenance"`
	ComplianceAlignment  CompliancePolicy   `json:"compliance_alignment"`
	TechnicalFeasibility FeasibilityPolicy  `json:"technical_feasibility"`
}

// LicensePolicy buckets normalized SPDX-ish identifiers into verdicts.
type LicensePolicy struct {
	Allow []string `json:"allow"`
	Warn  []string `json:"warn"`
	Deny  []string `json:"deny"`
}

// TransparencyPolicy lists fields of which at least one must be present
// for a model to count as data-transparent.
type TransparencyPolicy struct {
	RequireAnyOf []string `json:"require_any_of"`
}

// ProvenancePolicy defines who is trusted outright and how much adoption a
// community model needs before it is merely a caution.
type ProvenancePolicy struct {
	TrustedOwners   []string `json:"trusted_owners"`
	MinDownloads30d int64    `json:"min_downloads_30d"`
}

// CompliancePolicy holds keyword lists matched against the lowercased card
// text. Bad keywords always win over ok keywords.
type CompliancePolicy struct {
	KeywordsOK  []string `json:"keywords_ok"`
	KeywordsBad []string `json:"keywords_bad"`
}

// FeasibilityPolicy sets model-size thresholds in billions of parameters.
type FeasibilityPolicy struct {
	MaxParamsB  float64 `json:"max_params_b"`
	WarnParamsB float64 `json:"warn_params_b"`
}

// DefaultPolicy returns the built-in policy. Callers receive a fresh copy
// every time; the template itself is never handed out, so caller-side edits
// cannot leak into later loads.
func DefaultPolicy() *Policy {
	return &Policy{
		Weights: map[string]int{
			"license":               2,
			"data_transparency":     2,
			"security_provenance":   2,
			"maturity_support":      1,
			"compliance_alignment":  2,
			"technical_feasibility": 1,
		},
		License: LicensePolicy{
			Allow: []string{"apache-2.0", "mit", "bsd-3-clause", "bsd-2-clause"},
			Warn:  []string{"cc-by-4.0", "lgpl-3.0", "mpl-2.0", "epl-2.0"},
			Deny:  []string{"cc-by-nc-4.0", "gpl-3.0", "proprietary", "unknown", "no-license"},
		},
		DataTransparency: TransparencyPolicy{
			RequireAnyOf: []string{"datasets", "training_data", "data_license"},
		},
		SecurityProvenance: ProvenancePolicy{
			TrustedOwners:   []string{"meta-llama", "mistralai", "tiiuae", "microsoft", "google", "huggingface"},
			MinDownloads30d: 1000,
		},
		ComplianceAlignment: CompliancePolicy{
			KeywordsOK:  []string{"hipaa", "pci", "gdpr", "pii handling", "privacy"},
			KeywordsBad: []string{"no restrictions", "unrestricted", "not for production"},
		},
		TechnicalFeasibility: FeasibilityPolicy{
			MaxParamsB:  70,
			WarnParamsB: 20,
		},
	}
}

// Clone returns a deep copy of the policy.
func (p *Policy) Clone() *Policy {
	c := *p
	c.Weights = make(map[string]int, len(p.Weights))
	for k, v := range p.Weights {
		c.Weights[k] = v
	}
	c.License.Allow = append([]string(nil), p.License.Allow...)
	c.License.Warn = append([]string(nil), p.License.Warn...)
	c.License.Deny = append([]string(nil), p.License.Deny...)
	c.DataTransparency.RequireAnyOf = append([]string(nil), p.DataTransparency.RequireAnyOf...)
	c.SecurityProvenance.TrustedOwners = append([]string(nil), p.SecurityProvenance.TrustedOwners...)
	c.ComplianceAlignment.KeywordsOK = append([]string(nil), p.ComplianceAlignment.KeywordsOK...)
	c.ComplianceAlignment.KeywordsBad = append([]string(nil), p.ComplianceAlignment.KeywordsBad...)
	return &c
}

// Weight returns the weight for a dimension, defaulting to 1 when the
// policy does not list it.
func (p *Policy) Weight(dimension string) int {
	if w, ok := p.Weights[dimension]; ok {
		return w
	}
	return 1
}
