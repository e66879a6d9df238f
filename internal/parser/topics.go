package parser

import (
	"regexp"
	"strings"

	"github.com/agentscope/core/internal/models"
)

var (
	intentPattern   = regexp.MustCompile(`(?i)intent:\s*\n?\s*displayName:\s*["']?([^"'\n]+)["']?`)
	variablePattern = regexp.MustCompile(`\b(?:Topic|Global)\.[A-Za-z_]\w*`)
	mappingBullet   = regexp.MustCompile(`^[A-Za-z_][\w-]*:(?:\s|$)`)

	triggerBlocks = newBlockScanner("triggers", "trigger", "triggerQueries")
)

// ExtractTriggers returns the trigger phrases of a dialog in document order:
// intent display names first, then bullet items under trigger blocks.
func ExtractTriggers(c models.RawComponent) []string {
	triggers := []string{}
	if c.Data == "" {
		return triggers
	}

	for _, m := range intentPattern.FindAllStringSubmatch(c.Data, -1) {
		if name := strings.TrimSpace(m[1]); name != "" {
			triggers = append(triggers, name)
		}
	}

	for _, b := range triggerBlocks.scan(c.Data) {
		for _, line := range b.lines {
			phrase, ok := bulletText(line)
			if !ok || mappingBullet.MatchString(phrase) {
				continue
			}
			triggers = append(triggers, phrase)
		}
	}

	return triggers
}

func bulletText(line string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(line, "-"):
		rest = line[1:]
	case strings.HasPrefix(line, "–"):
		rest = line[len("–"):]
	default:
		return "", false
	}
	rest = strings.Trim(strings.TrimSpace(rest), `"'`)
	return rest, rest != ""
}

// ExtractVariables lists the Topic.* and Global.* variables a dialog touches,
// each once, in order of first use.
func ExtractVariables(c models.RawComponent) []string {
	vars := []string{}
	seen := make(map[string]bool)
	for _, v := range variablePattern.FindAllString(c.Data, -1) {
		if seen[v] {
			continue
		}
		seen[v] = true
		vars = append(vars, v)
	}
	return vars
}

func displayName(c models.RawComponent) string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	schema := strings.TrimSpace(c.SchemaName)
	if i := strings.LastIndex(schema, "."); i >= 0 {
		return schema[i+1:]
	}
	return schema
}
