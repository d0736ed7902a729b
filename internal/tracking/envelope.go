package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
)

// WebSocket message types.
const (
	MsgHello   = "hello"
	MsgSample  = "sample"
	MsgNoHand  = "no_hand"
	MsgWelcome = "welcome"
)

// Envelope is the JSON frame of the WebSocket tracker protocol:
// {"t":"sample","p":{"hand":true,"x":0.4,"y":0.7}}.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// SamplePayload is the payload of a MsgSample envelope.
type SamplePayload struct {
	Hand bool    `json:"hand"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Sample converts the payload, clamping coordinates to the frame.
func (p SamplePayload) Sample() Sample {
	if !p.Hand {
		return NoHand
	}
	return Sample{Detected: true, X: clamp01(p.X), Y: clamp01(p.Y)}
}

type HelloPayload struct {
	Version int `json:"version"`
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("encode envelope: empty type")
	}
	e := Envelope{T: t}
	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		e.P = pb
	}
	return json.Marshal(e)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errors.New("decode envelope: empty message")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", env.T, err)
	}
	return out, nil
}
