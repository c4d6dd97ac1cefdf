package openai

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"unicode/utf8"
)

// errInvalidUTF8 marks a line whose reassembled bytes do not decode as text.
var errInvalidUTF8 = errors.New("byte stream is not valid UTF-8")

// endOfStream is the SSE sentinel payload that marks the end of data.
const endOfStream = "[DONE]"

// frameDecoder reassembles SSE data payloads from an arbitrary byte stream.
//
// Network chunks can split a frame anywhere, including mid-rune and
// mid-payload. The decoder buffers bytes until a full line arrives, then
// buffers payloads until they form structurally complete JSON. The sequence of
// payloads it produces depends only on the byte stream, never on how the bytes
// were chunked.
type frameDecoder struct {
	lineBuf  []byte // bytes of the current, not-yet-terminated line
	holdover string // structurally incomplete payload awaiting its continuation
	done     bool   // saw the [DONE] sentinel
}

func newFrameDecoder() *frameDecoder {
	return &frameDecoder{}
}

// push feeds raw bytes into the decoder and returns any complete data
// payloads they unlock. A non-nil error means the stream carried bytes that
// are not valid UTF-8 text and cannot be decoded.
func (d *frameDecoder) push(chunk []byte) ([]string, error) {
	d.lineBuf = append(d.lineBuf, chunk...)

	var payloads []string
	for {
		nl := bytes.IndexByte(d.lineBuf, '\n')
		if nl < 0 {
			break
		}

		line := d.lineBuf[:nl]
		d.lineBuf = d.lineBuf[nl+1:]

		// Validate per reassembled line so a rune split across chunks
		// is judged whole, not at the chunk boundary.
		if !utf8.Valid(line) {
			return payloads, errInvalidUTF8
		}

		payload, ok := d.takeLine(strings.TrimSuffix(string(line), "\r"))
		if ok {
			payloads = append(payloads, payload)
		}
	}

	return payloads, nil
}

// takeLine processes one complete line and reports whether it produced a
// payload ready for parsing.
func (d *frameDecoder) takeLine(line string) (string, bool) {
	if d.done {
		return "", false
	}

	// A held-over partial consumes the next line verbatim: the server split
	// one JSON payload across frames, so the continuation carries no prefix
	// of its own.
	if d.holdover != "" {
		payload := d.holdover + line
		d.holdover = ""
		if !jsonComplete(payload) {
			d.holdover = payload
			return "", false
		}
		return payload, true
	}

	// Skip blank separator lines and SSE comments.
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}

	payload, found := strings.CutPrefix(line, "data: ")
	if !found {
		// Other SSE fields (event:, id:, retry:) carry no chunk data.
		return "", false
	}

	if payload == endOfStream {
		d.done = true
		return "", false
	}

	if !jsonComplete(payload) {
		d.holdover = payload
		return "", false
	}

	return payload, true
}

// finish flushes decoder state at end of stream. A dangling partial payload
// is dropped with a diagnostic; the stream ended before its continuation.
func (d *frameDecoder) finish() {
	if d.holdover != "" {
		log.Printf("openai: dropping incomplete trailing payload (%d bytes)", len(d.holdover))
		d.holdover = ""
	}
}

// jsonComplete reports whether s is structurally complete JSON: every brace
// and bracket opened outside a string has been closed, and no string is left
// open. Text that never opens a structure counts as complete and is left for
// the parser to reject, so garbage cannot pin the decoder in holdover forever.
func jsonComplete(s string) bool {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				// Unbalanced close; let the parser reject it.
				return true
			}
		}
	}

	return depth == 0 && !inString
}
