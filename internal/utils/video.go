package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

const megabyte = 1024 * 1024

// VideoStream yields decoded JPEG frames from an FFmpeg subprocess in order.
type VideoStream struct {
	cmd     *SafeCommand
	out     io.ReadCloser
	scanner *bufio.Scanner
	fps     float64
	done    bool
}

// OpenVideo starts an FFmpeg decoder for the given file and probes its frame
// rate. A missing or unreadable file is reported as an open error before any
// subprocess is spawned.
func OpenVideo(ctx context.Context, path string) (*VideoStream, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected a video file", path)
	}

	ffmpeg := NewFFmpegCmd(ctx, path)
	out, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create ffmpeg stdout pipe: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		out.Close()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(SplitJpeg)

	return &VideoStream{
		cmd:     ffmpeg,
		out:     out,
		scanner: scanner,
		fps:     GetVideoFPS(ctx, path),
	}, nil
}

// Next returns the next frame, or io.EOF once the stream is exhausted.
// The returned slice is a copy and remains valid across calls.
func (v *VideoStream) Next() ([]byte, error) {
	if v.done {
		return nil, io.EOF
	}
	if v.scanner.Scan() {
		frame := make([]byte, len(v.scanner.Bytes()))
		copy(frame, v.scanner.Bytes())
		return frame, nil
	}
	v.done = true
	if err := v.scanner.Err(); err != nil {
		return nil, fmt.Errorf("frame scanner: %w", err)
	}
	return nil, io.EOF
}

// FPS returns the probed frame rate, or 0 when the source reported none.
func (v *VideoStream) FPS() float64 {
	return v.fps
}

// Close drains the decoder and reports any decode failure, including the
// captured FFmpeg logs.
func (v *VideoStream) Close() error {
	v.out.Close()
	if err := v.cmd.Wait(); err != nil {
		if v.cmd.Stderr.Len() > 0 {
			return fmt.Errorf("ffmpeg: %w: %s", err, v.cmd.Stderr.String())
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
