package stagedisplay

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformed marks an inbound payload that is not a stage display message.
var ErrMalformed = errors.New("malformed stage display message")

// value of the "acn" field that tags every message
type Action string

const (
	ActionAuth         Action = "ath"
	ActionFrameValues  Action = "fv"
	ActionCurrentSlide Action = "cs"
)

// ProtocolVersion is the stage display protocol announced during auth.
const ProtocolVersion = 610

// Message is one decoded inbound notification: AuthResult, FrameValues or
// Unknown.
type Message interface {
	Action() Action
	isMessage()
}

// outcome of the password handshake
type AuthResult struct {
	OK       bool
	Err      string
	Protocol int64
}

// FrameValues carries the values of one stage layout refresh. CurrentText is
// the "cs" element's text; HasCurrent is false when the frame has no "cs"
// element at all.
type FrameValues struct {
	CurrentText string
	HasCurrent  bool
}

// any other tagged message (clock, timers, layouts, ...)
type Unknown struct {
	Tag Action
}

func (AuthResult) Action() Action { return ActionAuth }
func (FrameValues) Action() Action { return ActionFrameValues }
func (u Unknown) Action() Action { return u.Tag }

func (AuthResult) isMessage() {}
func (FrameValues) isMessage() {}
func (Unknown) isMessage() {}

// Decode parses a raw payload into its tagged message type.
func Decode(data []byte) (Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrMalformed, root.Type)
	}

	acn := root.Get("acn")
	if !acn.Exists() || acn.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing acn", ErrMalformed)
	}

	switch Action(acn.String()) {
	case ActionAuth:
		return AuthResult{
			OK:       root.Get("ath").Bool(),
			Err:      root.Get("err").String(),
			Protocol: root.Get("ptl").Int(),
		}, nil
	case ActionFrameValues:
		cs := root.Get(`ary.#(acn=="cs")`)
		if !cs.Exists() {
			return FrameValues{}, nil
		}
		// a null or missing txt reads as ""
		return FrameValues{
			CurrentText: cs.Get("txt").String(),
			HasCurrent:  true,
		}, nil
	default:
		return Unknown{Tag: Action(acn.String())}, nil
	}
}
