package tracking

import "testing"

func TestEnvelope(t *testing.T) {
	b, err := Encode(MsgWelcome, HelloPayload{Version: 1})
	if err != nil {
		t.Fatal(err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil || env.T != MsgWelcome {
		t.Fatalf("envelope = %+v, %v", env, err)
	}
	hello, err := DecodePayload[HelloPayload](env)
	if err != nil || hello.Version != 1 {
		t.Fatalf("payload = %+v, %v", hello, err)
	}

	if _, err := DecodePayload[SamplePayload](Envelope{T: MsgSample}); err == nil {
		t.Fatalf("empty payload decoded")
	}
	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatalf("empty message decoded")
	}
	if _, err := DecodeEnvelope([]byte("{")); err == nil {
		t.Fatalf("malformed message decoded")
	}
	if _, err := Encode("", nil); err == nil {
		t.Fatalf("untyped envelope encoded")
	}
}

func TestSamplePayloadClamps(t *testing.T) {
	s := SamplePayload{Hand: true, X: -0.5, Y: 1.5}.Sample()
	if s != (Sample{Detected: true, X: 0, Y: 1}) {
		t.Fatalf("sample = %+v", s)
	}
	if s := (SamplePayload{X: 0.5, Y: 0.5}).Sample(); s != NoHand {
		t.Fatalf("handless payload = %+v", s)
	}
}
