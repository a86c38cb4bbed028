package worker

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"scenescout/internal/types"
)

// MockCloser wraps a bytes.Buffer to satisfy io.ReadCloser and io.WriteCloser
// interfaces. This allows us to use in-memory buffers as if they were OS Pipes.
type MockCloser struct {
	*bytes.Buffer
}

func (m *MockCloser) Close() error { return nil }

// frame writes a length-prefixed message into the mock data pipe.
func frame(t *testing.T, pipe *MockCloser, payload []byte) {
	t.Helper()
	if err := binary.Write(pipe, binary.BigEndian, uint32(len(payload))); err != nil {
		t.Fatal(err)
	}
	pipe.Write(payload)
}

func TestDetect(t *testing.T) {
	stdinMock := &MockCloser{Buffer: new(bytes.Buffer)}
	dataPipeMock := &MockCloser{Buffer: new(bytes.Buffer)}

	// Pre-fill the data pipe with a fake detector reply
	reply, _ := json.Marshal([]types.Detection{
		{Box: [4]float64{10, 10, 50, 50}, Confidence: 0.91, Class: 0},
	})
	frame(t, dataPipeMock, reply)

	// Cmd is nil because we aren't testing process management, just the protocol
	w := &Worker{Stdin: stdinMock, DataPipe: dataPipeMock}

	inputFrame := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	detections, err := w.Detect(inputFrame)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// Verify Go sent the correct data to the worker: 4 bytes header + body
	sentData := stdinMock.Bytes()
	if len(sentData) != 4+len(inputFrame) {
		t.Errorf("Expected %d bytes sent, got %d", 4+len(inputFrame), len(sentData))
	}
	if binary.BigEndian.Uint32(sentData[:4]) != uint32(len(inputFrame)) {
		t.Errorf("Wrong length prefix: %X", sentData[:4])
	}

	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	d := detections[0]
	if d.Box != [4]float64{10, 10, 50, 50} || d.Class != 0 {
		t.Errorf("Unexpected detection: %+v", d)
	}
	if math.Abs(d.Confidence-0.91) > 1e-9 {
		t.Errorf("Expected confidence 0.91, got %f", d.Confidence)
	}
}

func TestDetectEmptyFrame(t *testing.T) {
	stdinMock := &MockCloser{Buffer: new(bytes.Buffer)}
	dataPipeMock := &MockCloser{Buffer: new(bytes.Buffer)}
	frame(t, dataPipeMock, []byte("[]"))

	w := &Worker{Stdin: stdinMock, DataPipe: dataPipeMock}
	detections, err := w.Detect([]byte("frame"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("Expected no detections, got %d", len(detections))
	}
}

func TestDetectError(t *testing.T) {
	stdinMock := &MockCloser{Buffer: new(bytes.Buffer)}
	dataPipeMock := &MockCloser{Buffer: new(bytes.Buffer)}
	frame(t, dataPipeMock, []byte(`{"error": "could not decode frame"}`))

	w := &Worker{Stdin: stdinMock, DataPipe: dataPipeMock}
	_, err := w.Detect([]byte("frame"))
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if err.Error() != "detector error: could not decode frame" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestHandshake(t *testing.T) {
	dataPipeMock := &MockCloser{Buffer: new(bytes.Buffer)}
	frame(t, dataPipeMock, []byte(`{"names": {"0": "person", "2": "car"}}`))

	w := &Worker{Stdin: &MockCloser{Buffer: new(bytes.Buffer)}, DataPipe: dataPipeMock}
	if err := w.handshake(); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	names := w.Names()
	if names[0] != "person" || names[2] != "car" {
		t.Errorf("Unexpected name table: %v", names)
	}
}

func TestHandshakeError(t *testing.T) {
	dataPipeMock := &MockCloser{Buffer: new(bytes.Buffer)}
	frame(t, dataPipeMock, []byte(`{"error": "weights file is corrupt"}`))

	w := &Worker{Stdin: &MockCloser{Buffer: new(bytes.Buffer)}, DataPipe: dataPipeMock}
	err := w.handshake()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "weights file is corrupt") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestHandshakeTruncated(t *testing.T) {
	// A worker that dies before the handshake produces a short read
	dataPipeMock := &MockCloser{Buffer: bytes.NewBuffer([]byte{0x00, 0x00})}

	w := &Worker{Stdin: &MockCloser{Buffer: new(bytes.Buffer)}, DataPipe: dataPipeMock}
	if err := w.handshake(); err == nil {
		t.Fatal("Expected error on truncated handshake, got nil")
	}
}
