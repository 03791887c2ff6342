package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/peschuster/propresenter-srt/internal/subtitle"
)

// Fill builds a translation track for primary: same indices and timings,
// each entry translated line by line so the line layout matches. Blank
// entries stay blank and are not sent.
func Fill(
	ctx context.Context,
	translator *Translator,
	primary *subtitle.Subtitle,
	concurrency int,
) (*subtitle.Subtitle, error) {
	out := &subtitle.Subtitle{
		Entries: make([]subtitle.Entry, len(primary.Entries)),
	}
	copy(out.Entries, primary.Entries)

	var captions []Caption
	for i, entry := range primary.Entries {
		out.Entries[i].Text = ""
		if strings.TrimSpace(entry.Text) == "" {
			continue
		}
		captions = append(captions, Caption{Index: i, Lines: strings.Split(entry.Text, "\n")})
	}

	if len(captions) == 0 {
		return out, nil
	}

	translated, err := translator.Translate(ctx, captions, concurrency)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	for _, c := range translated {
		out.Entries[c.Index].Text = strings.Join(c.Lines, "\n")
	}

	return out, nil
}
