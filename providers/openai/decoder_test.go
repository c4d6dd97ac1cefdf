package openai

import (
	"reflect"
	"testing"
)

// pushAll feeds the whole stream in chunks of the given size and collects
// every payload produced.
func pushAll(t *testing.T, stream []byte, chunkSize int) []string {
	t.Helper()

	decoder := newFrameDecoder()
	var payloads []string

	for start := 0; start < len(stream); start += chunkSize {
		end := start + chunkSize
		if end > len(stream) {
			end = len(stream)
		}
		out, err := decoder.push(stream[start:end])
		if err != nil {
			t.Fatalf("push failed: %v", err)
		}
		payloads = append(payloads, out...)
	}

	decoder.finish()
	return payloads
}

func TestFrameDecoderBasic(t *testing.T) {
	stream := []byte("data: {\"a\":1}\n\ndata: {\"b\":2}\n\ndata: [DONE]\n\n")

	payloads := pushAll(t, stream, len(stream))

	want := []string{`{"a":1}`, `{"b":2}`}
	if !reflect.DeepEqual(payloads, want) {
		t.Errorf("payloads = %v, want %v", payloads, want)
	}
}

func TestFrameDecoderChunkInvariance(t *testing.T) {
	stream := []byte("data: {\"content\":\"héllo\"}\r\n\r\ndata: {\"choices\":[{\"delta\":{\"content\":\"wörld\"}}]}\n\ndata: [DONE]\n\n")

	want := pushAll(t, stream, len(stream))
	if len(want) != 2 {
		t.Fatalf("expected 2 payloads from whole-stream push, got %d", len(want))
	}

	// The multibyte runes above guarantee some chunkings split mid-rune.
	for _, size := range []int{1, 2, 3, 5, 7, 16} {
		got := pushAll(t, stream, size)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk size %d: payloads = %v, want %v", size, got, want)
		}
	}
}

func TestFrameDecoderHoldover(t *testing.T) {
	// One JSON payload split across two SSE lines. The continuation line
	// carries no prefix of its own.
	stream := []byte("data: {\"a\":\n1}\n\ndata: [DONE]\n\n")

	payloads := pushAll(t, stream, len(stream))

	want := []string{"{\"a\":1}"}
	if !reflect.DeepEqual(payloads, want) {
		t.Errorf("payloads = %v, want %v", payloads, want)
	}
}

func TestFrameDecoderHoldoverMultipleContinuations(t *testing.T) {
	stream := []byte("data: {\"a\":[1,\n2,\n3]}\n\ndata: [DONE]\n\n")

	payloads := pushAll(t, stream, len(stream))

	want := []string{"{\"a\":[1,2,3]}"}
	if !reflect.DeepEqual(payloads, want) {
		t.Errorf("payloads = %v, want %v", payloads, want)
	}
}

func TestFrameDecoderBraceInsideString(t *testing.T) {
	stream := []byte("data: {\"content\":\"}{\\\"\"}\n\ndata: [DONE]\n\n")

	payloads := pushAll(t, stream, len(stream))

	want := []string{`{"content":"}{\""}`}
	if !reflect.DeepEqual(payloads, want) {
		t.Errorf("payloads = %v, want %v", payloads, want)
	}
}

func TestFrameDecoderSkipsNonDataLines(t *testing.T) {
	stream := []byte(": keep-alive\nevent: message\nid: 42\ndata: {\"a\":1}\n\ndata: [DONE]\n\n")

	payloads := pushAll(t, stream, len(stream))

	want := []string{`{"a":1}`}
	if !reflect.DeepEqual(payloads, want) {
		t.Errorf("payloads = %v, want %v", payloads, want)
	}
}

func TestFrameDecoderStopsAfterDone(t *testing.T) {
	stream := []byte("data: {\"a\":1}\n\ndata: [DONE]\n\ndata: {\"b\":2}\n\n")

	payloads := pushAll(t, stream, len(stream))

	want := []string{`{"a":1}`}
	if !reflect.DeepEqual(payloads, want) {
		t.Errorf("payloads = %v, want %v", payloads, want)
	}
}

func TestFrameDecoderDanglingPartialDropped(t *testing.T) {
	stream := []byte("data: {\"a\":1}\n\ndata: {\"never\":\n")

	payloads := pushAll(t, stream, len(stream))

	want := []string{`{"a":1}`}
	if !reflect.DeepEqual(payloads, want) {
		t.Errorf("payloads = %v, want %v", payloads, want)
	}
}

func TestFrameDecoderInvalidUTF8(t *testing.T) {
	decoder := newFrameDecoder()

	_, err := decoder.push([]byte{'d', 'a', 't', 'a', ':', ' ', 0xff, 0xfe, '\n'})
	if err == nil {
		t.Fatal("expected error for invalid UTF-8, got nil")
	}
}

func TestFrameDecoderSplitRuneIsNotAnError(t *testing.T) {
	decoder := newFrameDecoder()

	// "é" is 0xc3 0xa9; split it across two pushes.
	line := []byte("data: {\"c\":\"é\"}\n")
	split := 12 // inside the rune
	for line[split]&0xc0 != 0x80 {
		split++
	}

	if _, err := decoder.push(line[:split]); err != nil {
		t.Fatalf("first push failed: %v", err)
	}
	payloads, err := decoder.push(line[split:])
	if err != nil {
		t.Fatalf("second push failed: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
}

func TestJSONComplete(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"complete object", `{"a":1}`, true},
		{"incomplete object", `{"a":1`, false},
		{"open string", `{"a":"x`, false},
		{"brace in string", `{"a":"}"}`, true},
		{"escaped quote", `{"a":"\""}`, true},
		{"nested arrays", `{"a":[[1],[2]]}`, true},
		{"incomplete array", `{"a":[1,`, false},
		{"plain text", "not json at all", true},
		{"empty", "", true},
		{"unbalanced close", `}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jsonComplete(tt.input); got != tt.want {
				t.Errorf("jsonComplete(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
