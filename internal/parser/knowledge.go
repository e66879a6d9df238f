package parser

import (
	"regexp"

	"github.com/agentscope/core/internal/models"
)

var (
	labeledURLPattern = regexp.MustCompile(`(?i)(?:url|source|endpoint|link):\s*["']?(https?://[^\s"']+)`)
	bareURLPattern    = regexp.MustCompile(`https?://[^\s"']+`)
)

// ExtractKnowledgeURL finds the source URL of a knowledge component. Data is
// searched first, preferring a labeled URL, then content and description.
func ExtractKnowledgeURL(c models.RawComponent) (string, bool) {
	if c.Data != "" {
		if m := labeledURLPattern.FindStringSubmatch(c.Data); m != nil {
			return m[1], true
		}
		if url := bareURLPattern.FindString(c.Data); url != "" {
			return url, true
		}
	}

	for _, text := range []string{c.Content, c.Description} {
		if url := bareURLPattern.FindString(text); url != "" {
			return url, true
		}
	}

	return "", false
}
