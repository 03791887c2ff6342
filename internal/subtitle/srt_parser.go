package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// accepts both padded milliseconds and the bare remainder FormatTimestamp writes
var srtTimingRegex = regexp.MustCompile(
	`(\d{2,}):(\d{2}):(\d{2}),(\d{1,3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2}),(\d{1,3})`,
)

type SRTFile struct {
	entries []Entry
}

func parseSRTFile(path string) (*SRTFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	entries, err := parseSRTLines(lines)
	if err != nil {
		return nil, err
	}
	return &SRTFile{entries: entries}, nil
}

// parseSRTLines splits lines into records. Caption text may contain blank
// lines and bare numbers, so a record only ends at a blank line directly
// followed by an index line and a timing line.
func parseSRTLines(lines []string) ([]Entry, error) {
	var entries []Entry

	i := 0
	// skip anything before the first record header
	for i < len(lines) && !isRecordStart(lines, i) {
		i++
	}

	for i < len(lines) {
		index, _ := strconv.Atoi(strings.TrimSpace(lines[i]))
		start, end, err := parseTimingLine(lines[i+1], i+2)
		if err != nil {
			return nil, err
		}

		textStart := i + 2
		next := textStart
		for next < len(lines) && !(isBlank(lines[next-1]) && next-1 >= textStart && isRecordStart(lines, next)) {
			next++
		}

		textEnd := next
		if next < len(lines) {
			// drop the separator line before the next index
			textEnd = next - 1
		} else {
			for textEnd > textStart && isBlank(lines[textEnd-1]) {
				textEnd--
			}
		}

		entries = append(entries, Entry{
			Index:     index,
			StartTime: start,
			EndTime:   end,
			Text:      strings.Join(lines[textStart:textEnd], "\n"),
		})
		i = next
	}

	return entries, nil
}

// reports whether lines[i] is an index line followed by a timing line
func isRecordStart(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	if _, err := strconv.Atoi(strings.TrimSpace(lines[i])); err != nil {
		return false
	}
	return srtTimingRegex.MatchString(lines[i+1])
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func parseTimingLine(line string, lineNum int) (time.Duration, time.Duration, error) {
	matches := srtTimingRegex.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, fmt.Errorf("invalid timing line at line %d: %q", lineNum, line)
	}
	startTime, err := parseSRTTimestamp(matches[1], matches[2], matches[3], matches[4])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
	}
	endTime, err := parseSRTTimestamp(matches[5], matches[6], matches[7], matches[8])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
	}
	return startTime, endTime, nil
}

func (f *SRTFile) Subtitle() *Subtitle {
	return &Subtitle{
		Entries: f.entries,
	}
}

func (f *SRTFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.entries) {
		return fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(f.entries)-1,
		)
	}
	f.entries[index].Text = text
	return nil
}

func (f *SRTFile) Write(path string) error {
	return NewWriter().Write(f.Subtitle(), path)
}
