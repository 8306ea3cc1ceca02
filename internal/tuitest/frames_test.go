package tuitest

import (
	"bytes"
	"testing"
)

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[Hfirst  \r\n\x1b[1mbold\x1b[0m\n\n\x1b[2J\x1b[Hsecond")
	rec := &Recording{Raw: raw, Frames: parseFrames(raw)}
	if len(rec.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(rec.Frames))
	}
	if rec.Frames[0].Plain != "first\nbold" {
		t.Fatalf("unexpected first frame %q", rec.Frames[0].Plain)
	}
	last, ok := rec.FinalFrame()
	if !ok || last.Plain != "second" {
		t.Fatalf("unexpected final frame %q", last.Plain)
	}
	if frame, ok := rec.Find("first", "bold"); !ok || frame.Index != 0 {
		t.Fatalf("find failed: %+v", frame)
	}
	if _, ok := rec.Find("missing"); ok {
		t.Fatal("find should fail for absent text")
	}
}

func TestTerminalResponderAnswersProbes(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)
	tr.Process([]byte("abc\x1b[6"))
	tr.Process([]byte("n\x1b]11;?\x07"))
	want := "\x1b[1;1R\x1b]11;rgb:0000/0000/0000\x07"
	if out.String() != want {
		t.Fatalf("unexpected replies %q", out.String())
	}
}
