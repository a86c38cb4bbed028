package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"scenescout/internal/utils"
	"scenescout/internal/web"
)

var serveOpts Options

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI over the process and search operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveOpts.Listen, "listen", "l", ":8080", "Address to listen on")
	serveCmd.Flags().StringVarP(&serveOpts.VideoDir, "video-dir", "i", "videos", "Default directory containing videos")
	serveCmd.Flags().StringVarP(&serveOpts.MetadataDir, "metadata-dir", "m", "metadata", "Default directory for metadata")
	serveCmd.Flags().IntVarP(&serveOpts.FrameSkip, "frame-skip", "n", 30, "Default frame sampling stride")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	det, err := newDetector(ctx)
	if err != nil {
		return err
	}
	defer det.Close()

	srv := web.New(det, web.Defaults{
		VideoDir:    serveOpts.VideoDir,
		MetadataDir: serveOpts.MetadataDir,
		FrameSkip:   serveOpts.FrameSkip,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: server shutdown: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "SceneScout UI listening on %s\n", serveOpts.Listen)
	if err := srv.Start(serveOpts.Listen); err != nil && err != http.ErrServerClosed {
		utils.ShowError("HTTP server failed", err, nil)
		return err
	}
	return nil
}
