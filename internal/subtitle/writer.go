package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SubRip format
type SRTWriter struct{}

func NewWriter() Writer {
	return &SRTWriter{}
}

// writes the subtitle to an SRT file
func (w *SRTWriter) Write(sub *Subtitle, path string) error {
	return WriteFile(path, Encode(sub))
}

// Encode renders entries as SubRip records: index, timing line, text lines
// and a blank separator, all joined with CRLF. No entries yields "".
func Encode(sub *Subtitle) string {
	if sub == nil || len(sub.Entries) == 0 {
		return ""
	}

	records := make([]string, 0, len(sub.Entries)*4)
	for _, entry := range sub.Entries {
		records = append(records,
			strconv.Itoa(entry.Index),
			fmt.Sprintf("%s --> %s",
				FormatDuration(entry.StartTime),
				FormatDuration(entry.EndTime)),
			strings.ReplaceAll(entry.Text, "\n", LineBreak),
			"",
		)
	}

	return strings.Join(records, LineBreak)
}

// writes already encoded content, creating parent directories
func WriteFile(path, content string) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// <prefix>_<suffix>.srt inside dir
func TrackPath(dir, prefix, suffix string) string {
	return filepath.Join(dir, prefix+"_"+suffix+Extension)
}
