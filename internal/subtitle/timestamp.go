package subtitle

import (
	"fmt"
	"strconv"
	"time"
)

const (
	millisPerHour   = int64(time.Hour / time.Millisecond)
	millisPerMinute = int64(time.Minute / time.Millisecond)
	millisPerSecond = int64(time.Second / time.Millisecond)
)

// FormatTimestamp renders elapsed milliseconds as HH:MM:SS,m. Hours, minutes
// and seconds are padded to two digits (hours may grow past 99). The
// millisecond field is the bare remainder with no padding, so 5ms renders as
// ",5". Negative input is clamped to zero.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}

	hours := ms / millisPerHour
	minutes := (ms - hours*millisPerHour) / millisPerMinute
	seconds := (ms - hours*millisPerHour - minutes*millisPerMinute) / millisPerSecond
	millis := ms - hours*millisPerHour - minutes*millisPerMinute - seconds*millisPerSecond

	return fmt.Sprintf("%02d:%02d:%02d,%d", hours, minutes, seconds, millis)
}

func FormatDuration(d time.Duration) string {
	return FormatTimestamp(d.Milliseconds())
}

func parseSRTTimestamp(
	hours, minutes, seconds, millis string,
) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
