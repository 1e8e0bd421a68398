package model

import "strings"

// ModelRecord holds everything cardrisk knows about one hub repository.
// It is built once per fetch and treated as immutable afterwards.
type ModelRecord struct {
	RepoID string `json:"repo_id"` // "owner/name"

	License   string   `json:"license,omitempty"`
	Pipeline  string   `json:"pipeline_tag,omitempty"`
	Library   string   `json:"library_name,omitempty"`
	ModelType string   `json:"model_type,omitempty"`
	BaseModel string   `json:"base_model,omitempty"`
	Tags      []string `json:"tags"`
	Datasets  []string `json:"datasets"`
	Languages []string `json:"languages"`
	Metrics   []Metric `json:"metrics"`

	// data_license comes only from card front matter; there is no hub field
	DataLicense string `json:"data_license,omitempty"`

	LastModified string `json:"last_modified,omitempty"` // as reported by the hub
	SHA          string `json:"sha,omitempty"`           // content hash of the main revision
	Downloads30d int64  `json:"downloads_30d"`
	Likes        int64  `json:"likes"`

	CardText string `json:"card_text"` // full raw card Markdown, front matter included

	// ParamsB is the parameter count in billions parsed from the card text.
	// Best-effort heuristic; nil when the card never states a size.
	ParamsB *float64 `json:"params_b,omitempty"`
}

// Metric is a reported evaluation metric: a name plus an optional value.
type Metric struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value,omitempty"`
}

// Owner returns the owner segment of the repo id, lowercased.
func (r *ModelRecord) Owner() string {
	owner, _, _ := strings.Cut(r.RepoID, "/")
	return strings.ToLower(owner)
}

// HasField reports whether a transparency field is present and truthy.
// Field names follow the policy vocabulary: datasets, training_data,
// data_license. Unknown fields are absent by definition.
func (r *ModelRecord) HasField(name string) bool {
	switch name {
	case "datasets", "training_data":
		return len(r.Datasets) > 0
	case "data_license":
		return r.DataLicense != ""
	default:
		return false
	}
}
