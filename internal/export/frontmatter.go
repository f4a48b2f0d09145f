// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package export renders memories as markdown documents with YAML
// frontmatter, and parses them back. The format is the interchange surface
// for moving memories between agents or into plain-text tooling.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/munin-mcp/munin/internal/memory"
)

// ToMarkdown converts a memory to markdown with frontmatter. The structured
// fields go into the frontmatter; the content becomes the document body.
func ToMarkdown(m *memory.Memory) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")

	frontmatterData, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	buf.Write(frontmatterData)
	buf.WriteString("---\n\n")

	buf.WriteString(m.Content)
	buf.WriteString("\n")

	return buf.String(), nil
}

// ParseMarkdown parses markdown content with YAML frontmatter back into a
// memory. A document without frontmatter yields a memory with only content.
func ParseMarkdown(content string) (*memory.Memory, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split frontmatter: %w", err)
	}

	var m memory.Memory
	if frontmatter != "" {
		if err := yaml.Unmarshal([]byte(frontmatter), &m); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}

	m.Content = strings.TrimSpace(body)

	return &m, nil
}

// ToMarkdownAll renders a batch of memories into one multi-document string,
// separated by blank lines. Used by the export tool to emit a whole store.
func ToMarkdownAll(mems []*memory.Memory) (string, error) {
	var buf bytes.Buffer
	for i, m := range mems {
		doc, err := ToMarkdown(m)
		if err != nil {
			return "", err
		}
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(doc)
	}
	return buf.String(), nil
}

// splitFrontmatter splits markdown content into frontmatter and body
func splitFrontmatter(content string) (string, string, error) {
	content = strings.TrimSpace(content)

	// Check if content starts with ---
	if !strings.HasPrefix(content, "---") {
		// No frontmatter
		return "", content, nil
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 3 {
		return "", content, nil
	}

	// Find closing delimiter
	closingIndex := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closingIndex = i
			break
		}
	}

	if closingIndex == -1 {
		return "", content, fmt.Errorf("frontmatter not properly closed")
	}

	frontmatter := strings.Join(lines[1:closingIndex], "\n")

	body := ""
	if closingIndex+1 < len(lines) {
		body = strings.Join(lines[closingIndex+1:], "\n")
	}

	return frontmatter, body, nil
}
