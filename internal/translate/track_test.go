package translate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/peschuster/propresenter-srt/internal/subtitle"
)

// stub model: decodes the captions from the prompt and answers in a code
// fence, captions reversed, every non-empty line prefixed with "fr:"
type stubCompleter struct {
	err    error
	rework func(reply []Caption) []Caption

	mu      sync.Mutex
	batches [][]Caption
}

func (s *stubCompleter) complete(_ context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}

	i := strings.Index(prompt, captionsHeader)
	if i < 0 {
		return "", errors.New("prompt without captions")
	}
	var batch []Caption
	if err := json.Unmarshal([]byte(prompt[i+len(captionsHeader):]), &batch); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.batches = append(s.batches, batch)
	s.mu.Unlock()

	reply := make([]Caption, len(batch))
	for j, c := range batch {
		lines := make([]string, len(c.Lines))
		for k, line := range c.Lines {
			if line != "" {
				lines[k] = "fr:" + line
			}
		}
		reply[len(batch)-1-j] = Caption{Index: c.Index, Lines: lines}
	}
	if s.rework != nil {
		reply = s.rework(reply)
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}

func (s *stubCompleter) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, batch := range s.batches {
		n += len(batch)
	}
	return n
}

func stubTranslator(stub *stubCompleter, batchSize int) *Translator {
	return &Translator{
		provider: Provider("stub"),
		backend:  stub,
		options:  Options{TargetLanguage: "French", BatchSize: batchSize},
	}
}

func primaryTrack() *subtitle.Subtitle {
	return &subtitle.Subtitle{
		Entries: []subtitle.Entry{
			{Index: 1, StartTime: time.Second, EndTime: 5 * time.Second, Text: "Hello"},
			{Index: 2, StartTime: 5 * time.Second, EndTime: 6 * time.Second, Text: " "},
			{Index: 3, StartTime: 6 * time.Second, EndTime: 9 * time.Second, Text: "two\nlines"},
			{Index: 4, StartTime: 9 * time.Second, EndTime: 12 * time.Second, Text: "Verse one\n\nChorus"},
		},
	}
}

func TestFillKeepsTimingIndicesAndLines(t *testing.T) {
	for _, batchSize := range []int{1, 2, 50} {
		stub := &stubCompleter{}
		primary := primaryTrack()

		got, err := Fill(context.Background(), stubTranslator(stub, batchSize), primary, 2)
		if err != nil {
			t.Fatalf("batch size %d: Fill failed: %v", batchSize, err)
		}

		want := []subtitle.Entry{
			{Index: 1, StartTime: time.Second, EndTime: 5 * time.Second, Text: "fr:Hello"},
			{Index: 2, StartTime: 5 * time.Second, EndTime: 6 * time.Second, Text: ""},
			{Index: 3, StartTime: 6 * time.Second, EndTime: 9 * time.Second, Text: "fr:two\nfr:lines"},
			{Index: 4, StartTime: 9 * time.Second, EndTime: 12 * time.Second, Text: "fr:Verse one\n\nfr:Chorus"},
		}
		if diff := cmp.Diff(want, got.Entries); diff != "" {
			t.Errorf("batch size %d: entries mismatch (-want +got):\n%s", batchSize, diff)
		}

		if n := stub.sent(); n != 3 {
			t.Errorf("batch size %d: blank entry should not be sent, got %d captions", batchSize, n)
		}
		if primary.Entries[0].Text != "Hello" {
			t.Error("Fill modified the primary track")
		}
	}
}

func TestFillSendsLineArrays(t *testing.T) {
	stub := &stubCompleter{}
	if _, err := Fill(context.Background(), stubTranslator(stub, 50), primaryTrack(), 1); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	want := [][]Caption{{
		{Index: 0, Lines: []string{"Hello"}},
		{Index: 2, Lines: []string{"two", "lines"}},
		{Index: 3, Lines: []string{"Verse one", "", "Chorus"}},
	}}
	if diff := cmp.Diff(want, stub.batches); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestFillFitsLineCount(t *testing.T) {
	stub := &stubCompleter{
		rework: func(reply []Caption) []Caption {
			for i := range reply {
				reply[i].Lines = []string{strings.Join(reply[i].Lines, " ")}
			}
			return reply
		},
	}

	got, err := Fill(context.Background(), stubTranslator(stub, 50), primaryTrack(), 1)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if text := got.Entries[2].Text; text != "fr:two fr:lines\n" {
		t.Errorf("entry 2: got %q, want %q", text, "fr:two fr:lines\n")
	}
}

func TestFillAllBlank(t *testing.T) {
	stub := &stubCompleter{}
	primary := &subtitle.Subtitle{Entries: []subtitle.Entry{{Index: 1, Text: ""}}}

	got, err := Fill(context.Background(), stubTranslator(stub, 50), primary, 1)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if len(got.Entries) != 1 || stub.sent() != 0 {
		t.Errorf("unexpected result %+v, sent %d", got.Entries, stub.sent())
	}
}

func TestFillErrors(t *testing.T) {
	boom := errors.New("rate limited")
	tests := []struct {
		name string
		stub *stubCompleter
		is   error
	}{
		{"provider error", &stubCompleter{err: boom}, boom},
		{"unknown index", &stubCompleter{rework: func(reply []Caption) []Caption {
			reply[0].Index = 99
			return reply
		}}, nil},
		{"missing caption", &stubCompleter{rework: func(reply []Caption) []Caption {
			return reply[1:]
		}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fill(context.Background(), stubTranslator(tt.stub, 50), primaryTrack(), 1)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v in chain, got %v", tt.is, err)
			}
		})
	}
}
