package worker

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"scenescout/internal/types"
	"scenescout/internal/utils"
)

const (
	// DefaultModelPath is where the detector weights live on disk.
	DefaultModelPath = "yolo11n.pt"
	// DefaultModelURL is the official YOLO11n release asset.
	DefaultModelURL = "https://github.com/ultralytics/assets/releases/download/v8.3.0/yolo11n.pt"

	detectorScript = "python/detector.py"
)

// EnsureModel downloads the detector weights if they are absent locally.
// A failed download is fatal to the caller: no detector is usable without it.
func EnsureModel(ctx context.Context, url, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Downloading model from %s...\n", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build model request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	tmp := path + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}

	bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(path))
	if _, err := io.Copy(io.MultiWriter(f, bar), resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("download model: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("install model file: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Model download completed.")
	return nil
}

// Worker manages the lifecycle of the external detector subprocess.
// Frames go in over stdin, replies come back over an FD-3 side pipe, both
// framed with a big-endian uint32 length prefix.
type Worker struct {
	Cmd      *utils.SafeCommand
	Stdin    io.WriteCloser
	DataPipe io.ReadCloser

	names map[int]string
}

// New spawns the detector subprocess with the given weights and waits for its
// handshake, which carries the class-index-to-name mapping.
func New(ctx context.Context, modelPath string) (*Worker, error) {
	py := utils.NewSafeCommand(ctx, "python3", "-u", detectorScript, modelPath)

	// Side-channel pipe (FD 3) keeps detection data clear of stdout noise.
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create pipe: %w", err)
	}
	py.Cmd.ExtraFiles = []*os.File{w}

	stdin, err := py.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}

	if err := py.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("detector worker failed to start: %w", err)
	}

	// Close the write-end in the parent so only the child holds it.
	w.Close()

	worker := &Worker{Cmd: py, Stdin: stdin, DataPipe: r}
	if err := worker.handshake(); err != nil {
		worker.Close()
		return nil, fmt.Errorf("detector handshake: %w", err)
	}
	return worker, nil
}

// handshake reads the startup message carrying the class name table.
func (w *Worker) handshake() error {
	body, err := w.readMessage()
	if err != nil {
		return err
	}

	var hs types.Handshake
	if err := json.Unmarshal(body, &hs); err != nil || hs.Names == nil {
		var errorResult types.ErrorResult
		if json.Unmarshal(body, &errorResult) == nil && errorResult.Error != "" {
			return fmt.Errorf("detector error: %s", errorResult.Error)
		}
		return fmt.Errorf("malformed handshake: %q", body)
	}
	w.names = hs.Names
	return nil
}

// Names returns the class-index-to-label mapping supplied by the detector.
func (w *Worker) Names() map[int]string {
	return w.names
}

// Detect sends one encoded frame to the detector and decodes its reply.
// A reply carrying an error object is returned as an error for that frame
// only; the worker remains usable for subsequent frames.
func (w *Worker) Detect(frame []byte) ([]types.Detection, error) {
	if err := w.writeMessage(frame); err != nil {
		return nil, err
	}
	body, err := w.readMessage()
	if err != nil {
		return nil, err
	}

	var detections []types.Detection
	if err := json.Unmarshal(body, &detections); err != nil {
		var errorResult types.ErrorResult
		if json.Unmarshal(body, &errorResult) == nil && errorResult.Error != "" {
			return nil, fmt.Errorf("detector error: %s", errorResult.Error)
		}
		return nil, fmt.Errorf("malformed detector reply: %w", err)
	}
	return detections, nil
}

func (w *Worker) writeMessage(data []byte) error {
	if err := binary.Write(w.Stdin, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Stdin.Write(data)
	return err
}

func (w *Worker) readMessage() ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(w.DataPipe, header); err != nil {
		return nil, err // This is where we catch a crash on startup
	}
	body := make([]byte, binary.BigEndian.Uint32(header))
	_, err := io.ReadFull(w.DataPipe, body)
	return body, err
}

// Close shuts down the subprocess and waits for it to exit.
func (w *Worker) Close() {
	w.Stdin.Close()
	w.DataPipe.Close()
	if w.Cmd != nil {
		w.Cmd.Wait()
	}
}
