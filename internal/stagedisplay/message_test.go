package stagedisplay

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Message
		wantErr bool
	}{
		{
			name:  "auth ok",
			input: `{"acn":"ath","ath":true,"err":"","ptl":610}`,
			want:  AuthResult{OK: true, Protocol: 610},
		},
		{
			name:  "auth rejected",
			input: `{"acn":"ath","ath":false,"err":"Invalid Password","ptl":610}`,
			want:  AuthResult{OK: false, Err: "Invalid Password", Protocol: 610},
		},
		{
			name: "frame with current slide",
			input: `{"acn":"fv","ary":[
				{"acn":"ns","txt":"next"},
				{"acn":"cs","uid":"A1","txt":"Hello\nBonjour"},
				{"acn":"csn","txt":"notes"}
			]}`,
			want: FrameValues{CurrentText: "Hello\nBonjour", HasCurrent: true},
		},
		{
			name:  "current slide with null text",
			input: `{"acn":"fv","ary":[{"acn":"cs","txt":null}]}`,
			want:  FrameValues{CurrentText: "", HasCurrent: true},
		},
		{
			name:  "current slide without text",
			input: `{"acn":"fv","ary":[{"acn":"cs"}]}`,
			want:  FrameValues{CurrentText: "", HasCurrent: true},
		},
		{
			name:  "frame without current slide",
			input: `{"acn":"fv","ary":[{"acn":"ns","txt":"next"}]}`,
			want:  FrameValues{},
		},
		{
			name:  "frame without array",
			input: `{"acn":"fv"}`,
			want:  FrameValues{},
		},
		{
			name:  "clock message",
			input: `{"acn":"sys","txt":" 11:17 AM"}`,
			want:  Unknown{Tag: "sys"},
		},
		{
			name:    "not JSON",
			input:   `{"acn":"fv",`,
			wantErr: true,
		},
		{
			name:    "array payload",
			input:   `[{"acn":"fv"}]`,
			wantErr: true,
		},
		{
			name:    "missing acn",
			input:   `{"ath":true}`,
			wantErr: true,
		},
		{
			name:    "non-string acn",
			input:   `{"acn":42}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", got)
				}
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("expected ErrMalformed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMessageActions(t *testing.T) {
	if got := (AuthResult{}).Action(); got != ActionAuth {
		t.Errorf("AuthResult action = %q", got)
	}
	if got := (FrameValues{}).Action(); got != ActionFrameValues {
		t.Errorf("FrameValues action = %q", got)
	}
	if got := (Unknown{Tag: "tmr"}).Action(); got != "tmr" {
		t.Errorf("Unknown action = %q", got)
	}
}
