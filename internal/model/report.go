package model

// Band is the three-level overall verdict derived from the weighted score.
type Band string

const (
	BandGreen  Band = "Green"
	BandYellow Band = "Yellow"
	BandRed    Band = "Red"
)

// Dimension scores. Each dimension evaluator returns exactly one of these.
const (
	ScoreGreen  = 0
	ScoreYellow = 1
	ScoreRed    = 2
)

// DimensionResult is the outcome of one risk dimension: raw score, the rule
// that fired, and the weighted contribution to the total.
type DimensionResult struct {
	Score     int    `json:"score"` // 0 green, 1 yellow, 2 red
	Rationale string `json:"rationale"`
	Weight    int    `json:"weight"`
	Weighted  int    `json:"weighted"` // Score * Weight
}

// Band maps the raw dimension score to its band name.
func (d DimensionResult) Band() Band {
	switch d.Score {
	case ScoreGreen:
		return BandGreen
	case ScoreYellow:
		return BandYellow
	default:
		return BandRed
	}
}

// Overall aggregates the weighted dimension scores.
type Overall struct {
	Score   int     `json:"score"`   // Σ raw*weight
	Max     int     `json:"max"`     // Σ 2*weight
	Band    Band    `json:"band"`    // Green ≤25% < Yellow ≤60% < Red
	Percent float64 `json:"percent"` // Score/Max as a percentage, one decimal
}

// ScoreReport is the complete risk evaluation for one model.
type ScoreReport struct {
	RepoID  string                     `json:"repo_id"`
	Overall Overall                    `json:"overall"`
	Details map[string]DimensionResult `json:"details"`
}
