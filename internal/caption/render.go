package caption

import (
	"strings"
	"time"

	"github.com/peschuster/propresenter-srt/internal/subtitle"
)

// Render serializes one track of the segment list as SubRip text. Indices
// are 1-based and count every segment, so both tracks number identically.
func Render(segments []Segment, track Track, sessionStart time.Time) string {
	return subtitle.Encode(ToSubtitle(segments, track, sessionStart))
}

// ToSubtitle maps segments to entries with times relative to sessionStart.
// An open segment keeps its start as end.
func ToSubtitle(segments []Segment, track Track, sessionStart time.Time) *subtitle.Subtitle {
	entries := make([]subtitle.Entry, 0, len(segments))
	for i, seg := range segments {
		end := seg.End
		if seg.Open() {
			end = seg.Start
		}
		entries = append(entries, subtitle.Entry{
			Index:     i + 1,
			StartTime: seg.Start.Sub(sessionStart),
			EndTime:   end.Sub(sessionStart),
			Text:      strings.Join(track.lines(seg), "\n"),
		})
	}
	return &subtitle.Subtitle{Entries: entries}
}

// Tracks renders every enabled track; the secondary track only when
// translation splitting is on.
func Tracks(segments []Segment, split bool, sessionStart time.Time) map[Track]string {
	out := map[Track]string{
		TrackPrimary: Render(segments, TrackPrimary, sessionStart),
	}
	if split {
		out[TrackSecondary] = Render(segments, TrackSecondary, sessionStart)
	}
	return out
}
