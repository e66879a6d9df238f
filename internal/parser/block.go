package parser

import (
	"regexp"
	"strings"
)

// keyLinePattern matches a "key:" line, optionally followed by an inline value.
var keyLinePattern = regexp.MustCompile(`^(\s*)([A-Za-z_][\w-]*):(?:\s+(.*)|\s*)$`)

type scanState int

const (
	stateOutside scanState = iota
	stateInBlock
)

// block is one key-headed section of a YAML-like document.
type block struct {
	key    string
	inline string
	lines  []string
}

// text joins the inline value and the continuation lines. Block scalar
// indicators and surrounding quotes are dropped.
func (b block) text() string {
	parts := make([]string, 0, len(b.lines)+1)
	switch inline := strings.TrimSpace(b.inline); inline {
	case "", "|", "|-", "|+", ">", ">-", ">+":
	default:
		parts = append(parts, unquote(inline))
	}
	parts = append(parts, b.lines...)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// blockScanner collects the sections opened by any of its keys. A section runs
// from its key line until a line at or left of the key's indentation starts a
// new key, or until a non-blank line is indented less than the key. Bullets
// and plain text at the key's own indentation continue the section.
type blockScanner struct {
	keys map[string]bool
}

func newBlockScanner(keys ...string) blockScanner {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = true
	}
	return blockScanner{keys: set}
}

func (s blockScanner) scan(text string) []block {
	var (
		blocks  []block
		current block
		indent  int
		state   = stateOutside
	)

	closeBlock := func() {
		for len(current.lines) > 0 && current.lines[len(current.lines)-1] == "" {
			current.lines = current.lines[:len(current.lines)-1]
		}
		blocks = append(blocks, current)
		current = block{}
		state = stateOutside
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if state == stateInBlock {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				current.lines = append(current.lines, "")
				continue
			}
			lineIndent := leadingSpace(line)
			if lineIndent < indent || (lineIndent == indent && keyLinePattern.MatchString(line)) {
				closeBlock()
			} else {
				current.lines = append(current.lines, trimmed)
				continue
			}
		}

		m := keyLinePattern.FindStringSubmatch(line)
		if m == nil || !s.keys[strings.ToLower(m[2])] {
			continue
		}
		current = block{key: m[2], inline: m[3]}
		indent = len(m[1])
		state = stateInBlock
	}

	if state == stateInBlock {
		closeBlock()
	}

	return blocks
}

func leadingSpace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
