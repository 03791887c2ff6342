package caption

import (
	"regexp"
	"sync"
	"time"

	"github.com/peschuster/propresenter-srt/internal/logging"
)

var lineBreakRegex = regexp.MustCompile(`\r\n|\r|\n`)

// Engine turns a stream of "current text" snapshots into an append-only list
// of caption segments. Each event closes the open segment; non-empty text
// opens a new one. Identical consecutive text is not coalesced.
type Engine struct {
	mu           sync.Mutex
	segments     []Segment
	sessionStart time.Time
	split        bool
	logger       *logging.Logger
}

type Option func(*Engine)

func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// split enables distributing lines into primary (even) and secondary (odd)
func NewEngine(split bool, sessionStart time.Time, opts ...Option) *Engine {
	e := &Engine{
		sessionStart: sessionStart,
		split:        split,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) SessionStart() time.Time {
	return e.sessionStart
}

func (e *Engine) SplitTranslation() bool {
	return e.split
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.segments)
}

// Ingest records a text change observed at now. An empty text only closes
// the open segment.
func (e *Engine) Ingest(text string, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n := len(e.segments); n > 0 {
		last := &e.segments[n-1]
		if now.Before(last.Start) {
			e.logger.Warnw("Timestamp precedes previous segment start",
				"segment", n,
				"start", last.Start,
				"now", now,
			)
		}
		if last.Open() {
			last.End = now
		}
	}

	if text == "" {
		e.logger.Debugw("Caption cleared", "segments", len(e.segments))
		return
	}

	primary, secondary := e.splitLines(text)
	e.segments = append(e.segments, Segment{
		Start:     now,
		Primary:   primary,
		Secondary: secondary,
	})

	e.logger.Debugw("Caption segment opened",
		"index", len(e.segments),
		"primary", primary,
		"secondary", secondary,
	)
}

func (e *Engine) splitLines(text string) ([]string, []string) {
	lines := lineBreakRegex.Split(text, -1)
	if !e.split {
		return lines, []string{}
	}

	primary := make([]string, 0, (len(lines)+1)/2)
	secondary := make([]string, 0, len(lines)/2)
	for i, line := range lines {
		if i%2 == 0 {
			primary = append(primary, line)
		} else {
			secondary = append(secondary, line)
		}
	}
	return primary, secondary
}

// Finalize closes the open segment at now and returns a copy of the list.
func (e *Engine) Finalize(now time.Time) []Segment {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n := len(e.segments); n > 0 && e.segments[n-1].Open() {
		e.segments[n-1].End = now
	}

	out := make([]Segment, len(e.segments))
	copy(out, e.segments)
	return out
}
