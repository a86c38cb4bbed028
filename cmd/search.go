package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"scenescout/internal/store"
	"scenescout/internal/utils"
)

var searchMetadataDir string

var searchCmd = &cobra.Command{
	Use:   "search <object>",
	Short: "Search the extracted metadata for an object",
	Long:  "Search every metadata file for detection records whose object label contains the query as a case-insensitive substring.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSearch(args[0], searchMetadataDir)
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchMetadataDir, "metadata-dir", "m", "metadata", "Directory to load metadata from")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(query, metadataDir string) error {
	if strings.TrimSpace(query) == "" {
		err := fmt.Errorf("search query must not be empty")
		utils.ShowError("Missing search query", err, nil)
		return err
	}

	results, err := store.New(metadataDir).Search(query)
	if err != nil {
		utils.ShowError("Metadata search failed", err, nil)
		return err
	}

	if len(results) == 0 {
		fmt.Printf("No occurrences of %q found in the metadata.\n", query)
		return nil
	}

	fmt.Printf("Found %d occurrences of %q:\n", len(results), query)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "VIDEO\tTIME\tOBJECT\tBBOX\tCONFIDENCE")
	fmt.Fprintln(w, "-----\t----\t------\t----\t----------")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
			res.Video,
			fmtTime(res.Timestamp),
			res.Object,
			fmtBBox(res.BBox),
			res.Confidence,
		)
	}
	return w.Flush()
}

func fmtTime(seconds float64) string {
	duration := time.Duration(seconds * float64(time.Second))
	h := int(duration.Hours())
	m := int(duration.Minutes()) % 60
	s := int(duration.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func fmtBBox(b [4]float64) string {
	return fmt.Sprintf("[%.1f, %.1f, %.1f, %.1f]", b[0], b[1], b[2], b[3])
}
