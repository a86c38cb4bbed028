package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"scenescout/internal/store"
	"scenescout/internal/types"
	"scenescout/internal/utils"
)

// DefaultFPS is used when the video source reports no usable frame rate.
const DefaultFPS = 30

// Detector is the handle to the external object detection model.
// Implementations must tolerate being called once per sampled frame for the
// whole run; a per-frame failure only affects that frame.
type Detector interface {
	Detect(frame []byte) ([]types.Detection, error)
	Names() map[int]string
}

// FrameSource yields decoded frames in order with a reported frame rate.
type FrameSource interface {
	Next() ([]byte, error) // io.EOF once exhausted
	FPS() float64
	Close() error
}

// openVideo is swappable so the pipeline can be tested without FFmpeg.
var openVideo = func(ctx context.Context, path string) (FrameSource, error) {
	return utils.OpenVideo(ctx, path)
}

// Options controls a single-video extraction run.
type Options struct {
	Stride        int    // detect on every Stride-th frame, 0-based
	SaveFramesDir string // when non-empty, sampled frames are written here
}

// ProcessVideo runs detection over every stride-th frame of src and returns
// the detection records in frame order. Frames not selected by the stride are
// decoded but discarded. A detector failure on a single frame is treated the
// same as "no objects found" and does not abort the remaining frames.
func ProcessVideo(src FrameSource, det Detector, opts Options) ([]types.Record, error) {
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}
	fps := src.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	names := det.Names()

	records := []types.Record{}
	for index := 0; ; index++ {
		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Decode failure mid-stream: keep what we have.
			return records, err
		}
		if index%stride != 0 {
			continue
		}

		if opts.SaveFramesDir != "" {
			saveFrame(opts.SaveFramesDir, index, frame)
		}

		timestamp := float64(index) / fps
		detections, err := det.Detect(frame)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: detection failed on frame %d: %v\n", index, err)
			continue
		}
		for _, d := range detections {
			records = append(records, types.Record{
				Timestamp:  timestamp,
				Object:     resolveLabel(names, d.Class),
				BBox:       d.Box,
				Confidence: d.Confidence,
			})
		}
	}
	return records, nil
}

func resolveLabel(names map[int]string, class int) string {
	if label, ok := names[class]; ok {
		return label
	}
	return strconv.Itoa(class)
}

func saveFrame(dir string, index int, frame []byte) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: create frames directory: %v\n", err)
		return
	}
	name := filepath.Join(dir, fmt.Sprintf("frame_%06d.jpg", index))
	if err := os.WriteFile(name, frame, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "warning: save frame %d: %v\n", index, err)
	}
}

// ProcessDirectory runs the extraction pipeline over every file with a
// recognized video extension in videoDir, persisting one metadata file per
// video into metadataDir (created if absent). A video that cannot be opened
// is reported in the log and skipped; the batch continues. The returned log
// accumulates the per-video processing steps.
func ProcessDirectory(ctx context.Context, videoDir, metadataDir string, det Detector, stride int, saveFrames bool) (string, error) {
	entries, err := os.ReadDir(videoDir)
	if err != nil {
		return "", fmt.Errorf("read video directory: %w", err)
	}

	st := store.New(metadataDir)
	var log strings.Builder
	for _, entry := range entries {
		if entry.IsDir() || !utils.IsVideoFile(entry.Name()) {
			continue
		}
		videoPath := filepath.Join(videoDir, entry.Name())
		videoName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		fmt.Fprintf(&log, "Processing video: %s\n", videoPath)

		opts := Options{Stride: stride}
		if saveFrames {
			opts.SaveFramesDir = filepath.Join(metadataDir, "frames", videoName)
		}

		src, err := openVideo(ctx, videoPath)
		if err != nil {
			fmt.Fprintf(&log, "Error opening video file %s: %v\n", videoPath, err)
			continue
		}

		records, err := ProcessVideo(src, det, opts)
		if err != nil {
			fmt.Fprintf(&log, "Error reading frames from %s: %v\n", videoPath, err)
		}
		if err := src.Close(); err != nil {
			fmt.Fprintf(&log, "Decoder error for %s: %v\n", videoPath, err)
		}

		if err := st.Save(videoName, records); err != nil {
			fmt.Fprintf(&log, "Error saving metadata for %s: %v\n", videoPath, err)
			continue
		}
		fmt.Fprintf(&log, "Metadata saved to: %s\n", st.Path(videoName))
		if saveFrames {
			fmt.Fprintf(&log, "Extracted frames saved to: %s\n", opts.SaveFramesDir)
		}
	}
	return log.String(), nil
}
