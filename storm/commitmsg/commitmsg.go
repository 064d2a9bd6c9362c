// Package commitmsg generates and parses the generated-change
// metadata block embedded in git commit messages.
package commitmsg

import "strings"

const (
	begin = "--- generated change begin ---"
	end   = "--- generated change end ---"

	kindPrefix     = "kind: "
	artifactPrefix = "artifact: "
)

// Meta describes the generated change a commit records.
type Meta struct {
	// Kind is the change kind (docs, code, config).
	Kind string
	// Artifact is the repository-relative path of the
	// generated file.
	Artifact string
}

// Generate produces a full commit message: the title
// followed by a metadata block between begin/end
// markers, so generated commits stay identifiable in
// history.
func Generate(title string, meta Meta) string {
	var sb strings.Builder

	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(begin)
	sb.WriteByte('\n')
	sb.WriteString(kindPrefix)
	sb.WriteString(meta.Kind)
	sb.WriteByte('\n')
	sb.WriteString(artifactPrefix)
	sb.WriteString(meta.Artifact)
	sb.WriteByte('\n')
	sb.WriteString(end)
	sb.WriteByte('\n')

	return sb.String()
}

// Extract parses the metadata block from a commit
// message. The second return value is false when the
// message has no complete block.
func Extract(msg string) (Meta, bool) {
	var meta Meta

	betweenMarkers := false
	closed := false

	for _, line := range strings.Split(msg, "\n") {
		switch line {
		case begin:
			betweenMarkers = true
		case end:
			if betweenMarkers {
				closed = true
			}

			betweenMarkers = false
		default:
			if !betweenMarkers {
				continue
			}

			switch {
			case strings.HasPrefix(line, kindPrefix):
				meta.Kind = strings.TrimPrefix(
					line, kindPrefix,
				)
			case strings.HasPrefix(
				line, artifactPrefix,
			):
				meta.Artifact = strings.TrimPrefix(
					line, artifactPrefix,
				)
			}
		}
	}

	if !closed {
		return Meta{}, false
	}

	return meta, true
}
