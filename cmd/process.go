package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scenescout/internal/extract"
	"scenescout/internal/utils"
)

var processOpts Options

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract object detection metadata from a directory of videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runProcess(cmd)
	},
}

func init() {
	processCmd.Flags().StringVarP(&processOpts.VideoDir, "video-dir", "i", "videos", "Directory containing videos")
	processCmd.Flags().StringVarP(&processOpts.MetadataDir, "metadata-dir", "m", "metadata", "Directory to save metadata")
	processCmd.Flags().IntVarP(&processOpts.FrameSkip, "frame-skip", "n", 30, "Process every nth frame")
	processCmd.Flags().BoolVarP(&processOpts.SaveFrames, "save-frames", "s", false, "Save sampled frames as JPEGs next to the metadata")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command) error {
	if err := validateProcessFlags(&processOpts); err != nil {
		utils.ShowError("Invalid arguments", err, nil)
		return err
	}

	ctx := cmd.Context()
	det, err := newDetector(ctx)
	if err != nil {
		return err
	}
	defer det.Close()

	fmt.Fprintf(os.Stderr, "Processing videos in %s (every %d frames)...\n",
		processOpts.VideoDir, processOpts.FrameSkip)

	log, err := extract.ProcessDirectory(ctx, processOpts.VideoDir, processOpts.MetadataDir,
		det, processOpts.FrameSkip, processOpts.SaveFrames)
	if err != nil {
		utils.ShowError("Processing failed", err, nil)
		return err
	}

	fmt.Print(log)
	fmt.Fprintln(os.Stderr, "Processing complete.")
	return nil
}

// validateProcessFlags ensures all CLI arguments are valid before the model
// download or any subprocess is started.
func validateProcessFlags(opts *Options) error {
	info, err := os.Stat(opts.VideoDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("video directory does not exist: %s", opts.VideoDir)
		}
		return fmt.Errorf("unable to access video directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("video path is a file, expected a directory: %s", opts.VideoDir)
	}
	if opts.FrameSkip < 1 {
		return fmt.Errorf("frame-skip must be >= 1, got %d", opts.FrameSkip)
	}
	if opts.MetadataDir == "" {
		return fmt.Errorf("metadata directory must not be empty")
	}
	return nil
}
