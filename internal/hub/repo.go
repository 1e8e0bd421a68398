package hub

import (
	"regexp"
	"strings"
)

// repoIDPattern captures "owner/name" out of a hub URL, tolerating an
// optional "models/" path segment and trailing path/query/fragment parts.
var repoIDPattern = regexp.MustCompile(`huggingface\.co/(?:models/)?([^/?#]+/[^/?#]+)`)

// ExtractRepoID turns a full hub URL or a bare "owner/name" identifier into
// the bare identifier. Malformed input is passed through trimmed; it will
// fail at the fetch step instead.
func ExtractRepoID(urlOrID string) string {
	if m := repoIDPattern.FindStringSubmatch(urlOrID); m != nil {
		return m[1]
	}
	return strings.TrimSpace(urlOrID)
}
