package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	codeFenceRegex = regexp.MustCompile("```(?:json)?")
	lineBreakRegex = regexp.MustCompile(`\r\n|\r|\n`)
)

// parseReply decodes the JSON array in a model reply and matches it to the
// batch it answers. Every caption must come back exactly once. The result
// follows batch order and each caption gets its source's line count.
func parseReply(reply string, batch []Caption) ([]Caption, error) {
	text := strings.TrimSpace(codeFenceRegex.ReplaceAllString(reply, ""))

	start := strings.Index(text, "[")
	if start < 0 {
		return nil, fmt.Errorf("no JSON array in reply: %s", truncateString(text, 200))
	}
	var got []Caption
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&got); err != nil {
		return nil, fmt.Errorf(
			"failed to decode reply: %w (reply: %s)",
			err,
			truncateString(text, 200),
		)
	}

	if len(got) != len(batch) {
		return nil, fmt.Errorf("expected %d captions, got %d", len(batch), len(got))
	}

	byIndex := make(map[int]Caption, len(batch))
	for _, c := range batch {
		byIndex[c.Index] = Caption{Index: c.Index}
	}
	for _, c := range got {
		prev, ok := byIndex[c.Index]
		if !ok {
			return nil, fmt.Errorf("unexpected caption index %d in reply", c.Index)
		}
		if prev.Lines != nil {
			return nil, fmt.Errorf("caption index %d repeated in reply", c.Index)
		}
		if c.Lines == nil {
			c.Lines = []string{}
		}
		byIndex[c.Index] = c
	}

	out := make([]Caption, len(batch))
	for i, src := range batch {
		out[i] = Caption{
			Index: src.Index,
			Lines: fitLines(byIndex[src.Index].Lines, len(src.Lines)),
		}
	}
	return out, nil
}

// fitLines returns exactly n lines. Breaks inside a returned line split it,
// missing lines stay empty and surplus lines are joined onto the last one.
func fitLines(lines []string, n int) []string {
	var flat []string
	for _, line := range lines {
		for _, part := range lineBreakRegex.Split(line, -1) {
			flat = append(flat, strings.TrimSpace(part))
		}
	}

	out := make([]string, n)
	copy(out, flat)
	if n > 0 && len(flat) > n {
		var rest []string
		for _, line := range flat[n-1:] {
			if line != "" {
				rest = append(rest, line)
			}
		}
		out[n-1] = strings.Join(rest, " ")
	}
	return out
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
