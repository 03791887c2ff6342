package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// parsed subtitle file
type File interface {
	Subtitle() *Subtitle
	SetText(index int, text string) error
	Write(path string) error
}

func Open(path string) (File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case Extension:
		return parseSRTFile(path)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}
