// Package convert implements the cross-dialect component converter
// (spec.md §4.G): frontmatter parsing, Claude Code <-> Copilot <-> Codex
// field mapping for Command and Agent components, and an atomic
// write-on-success file writer.
package convert

import (
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ruminaider/plm/internal/errs"
)

// ParsedDocument is the result of splitting a markdown file into its
// YAML frontmatter and body.
type ParsedDocument struct {
	// HasFrontmatter is false when the file has no opening "---" delimiter
	// at all; Frontmatter is then the zero value and Body is the full input.
	HasFrontmatter bool
	// Frontmatter is the raw YAML bytes between the delimiters (empty if
	// there was no content between them).
	Frontmatter []byte
	Body        string
}

// parseFrontmatter splits content into (yaml bytes, body), preserving the
// body's exact bytes via offset accumulation rather than a naive rejoin of
// split lines, which would lose embedded/trailing whitespace fidelity.
//
// Grounded on the original implementation's parser/frontmatter.rs.
func parseFrontmatter(content string) (ParsedDocument, error) {
	content = strings.TrimPrefix(content, string(rune(0xFEFF)))

	lines := strings.Split(content, "\n")
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[start]), "---") {
		return ParsedDocument{Body: content}, nil
	}

	closingIdx := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "---") {
			closingIdx = i
			break
		}
	}
	if closingIdx == -1 {
		return ParsedDocument{Body: content}, nil
	}

	yamlLines := lines[start+1 : closingIdx]
	yamlContent := strings.Join(yamlLines, "\n")

	offset := 0
	for i := 0; i <= closingIdx; i++ {
		offset += len(lines[i]) + 1
	}
	if offset > len(content) {
		offset = len(content)
	}
	body := content[offset:]

	return ParsedDocument{
		HasFrontmatter: true,
		Frontmatter:    []byte(yamlContent),
		Body:           body,
	}, nil
}

// decodeFrontmatter parses content and unmarshals its frontmatter (if any)
// into out, which must be a pointer to a struct with yaml tags. An empty or
// absent frontmatter block leaves *out at its zero value.
func decodeFrontmatter(content string, out any) (string, error) {
	doc, err := parseFrontmatter(content)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(doc.Frontmatter))) == 0 {
		return doc.Body, nil
	}
	if err := yaml.Unmarshal(doc.Frontmatter, out); err != nil {
		return "", errs.New(errs.Parse, "convert.decodeFrontmatter", err)
	}
	return doc.Body, nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	return name
}

func nameFromFilename(filename string, suffixes ...string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(filename, suf) {
			return strings.TrimSuffix(filename, suf)
		}
	}
	return filename
}
