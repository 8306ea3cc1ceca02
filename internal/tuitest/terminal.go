package tuitest

import (
	"bytes"
	"io"
)

// terminalQuery is a capability query a TUI writes on startup and the reply a
// real terminal would send back.
type terminalQuery struct {
	seq   []byte
	reply []byte
}

var terminalQueries = []terminalQuery{
	{seq: []byte("\x1b[6n"), reply: []byte("\x1b[1;1R")},
	{seq: []byte("\x1b]10;?\x07"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{seq: []byte("\x1b]10;?\x1b\\"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{seq: []byte("\x1b]11;?\x07"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{seq: []byte("\x1b]11;?\x1b\\"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

// Process answers every query found in chunk. A short tail is kept so queries
// split across reads are still seen.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > 256 {
		tr.buf = tr.buf[len(tr.buf)-64:]
	}
}

func (tr *terminalResponder) answerNext() bool {
	for _, q := range terminalQueries {
		idx := bytes.Index(tr.buf, q.seq)
		if idx < 0 {
			continue
		}
		tr.buf = tr.buf[idx+len(q.seq):]
		_, _ = tr.w.Write(q.reply)
		return true
	}
	return false
}
