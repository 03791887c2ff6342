package caption

import (
	"time"
)

// one caption interval; a zero End means the segment is still open
type Segment struct {
	Start     time.Time
	End       time.Time
	Primary   []string
	Secondary []string
}

func (s Segment) Open() bool {
	return s.End.IsZero()
}

// Track selects which line set of a segment is rendered.
type Track int

const (
	TrackPrimary Track = iota
	TrackSecondary
)

// file name suffix for the track, as in <prefix>_main.srt
func (t Track) Suffix() string {
	switch t {
	case TrackSecondary:
		return "trans"
	default:
		return "main"
	}
}

func (t Track) String() string {
	switch t {
	case TrackSecondary:
		return "secondary"
	default:
		return "primary"
	}
}

func (t Track) lines(s Segment) []string {
	if t == TrackSecondary {
		return s.Secondary
	}
	return s.Primary
}
