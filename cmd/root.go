package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scenescout/internal/utils"
	"scenescout/internal/worker"
)

// Options holds shared configuration for the process and serve commands.
type Options struct {
	VideoDir    string
	MetadataDir string
	FrameSkip   int
	SaveFrames  bool
	Listen      string
}

var (
	// modelPath is where the detector weights live (flag or SCENESCOUT_MODEL)
	modelPath string
	// modelURL is where weights are fetched from when absent locally
	modelURL string
)

// Version is the application version.
const Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:     "scenescout",
	Short:   "Video Object Detection Metadata Extraction & Search",
	Version: Version, // This enables the --version flag
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// If no flag was provided, try the environment before the defaults
		if modelPath == "" {
			modelPath = os.Getenv("SCENESCOUT_MODEL")
			if modelPath == "" {
				modelPath = worker.DefaultModelPath
			}
		}
		if modelURL == "" {
			modelURL = os.Getenv("SCENESCOUT_MODEL_URL")
			if modelURL == "" {
				modelURL = worker.DefaultModelURL
			}
		}
	},
}

// newDetector ensures the model weights are present (downloading them on
// first use) and starts the detector worker. A download failure aborts
// startup entirely: no detector is usable without the weights.
func newDetector(ctx context.Context) (*worker.Worker, error) {
	if err := worker.EnsureModel(ctx, modelURL, modelPath); err != nil {
		utils.ShowError("Model download failed", err, nil)
		return nil, err
	}
	fmt.Fprintln(os.Stderr, "Starting detector engine...")
	w, err := worker.New(ctx, modelPath)
	if err != nil {
		utils.ShowError("Failed to start detector worker", err, nil)
		return nil, err
	}
	return w, nil
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "Path to detector weights (default: yolo11n.pt, env: SCENESCOUT_MODEL)")
	rootCmd.PersistentFlags().StringVar(&modelURL, "model-url", "", "URL to fetch detector weights from on first use (env: SCENESCOUT_MODEL_URL)")
}
