package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ragchat/src/core/ingest"
	"ragchat/src/core/knowledgebase"
	"ragchat/src/fsutil"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load, split and embed the document directory",
	Long: `The ingest command runs the indexing half of the server start-up and
reports what it found. Use it to check the document directory and the
embedding credentials before serving.`,
	RunE: runIngest,
}

var dryRun bool

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "load and split only, skip embedding")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	start := time.Now()

	loader, err := newLoader()
	if err != nil {
		return err
	}

	dir := loader.Dir()
	files, size, err := fsutil.NewLocalFileStore().GetFileStats(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	splitter := ingest.NewSplitter(viper.GetInt("ingest.chunk_size"), viper.GetInt("ingest.chunk_overlap"))

	spinner := getSpinner("Loading documents")
	chunks, err := loader.LoadAndSplit(ctx, splitter)
	spinner.Finish()
	if err != nil {
		return err
	}

	if !dryRun && len(chunks) > 0 {
		embedder, err := newEmbedder()
		if err != nil {
			return err
		}
		store, err := knowledgebase.NewMemoryStore(embedder)
		if err != nil {
			return err
		}

		batch := viper.GetInt("embedding.batch_size")
		if batch <= 0 {
			batch = len(chunks)
		}
		bar := getProgressBar(len(chunks), "Embedding chunks")
		for i := 0; i < len(chunks); i += batch {
			end := min(i+batch, len(chunks))
			if _, err := store.AddDocuments(ctx, chunks[i:end]); err != nil {
				bar.Exit()
				return err
			}
			bar.Add(end - i)
		}
		bar.Finish()
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %d\n", color.CyanString("Dimension:"), store.Dimension())
	}

	fmt.Fprintf(out, "%s %s\n", color.CyanString("Directory:"), dir)
	fmt.Fprintf(out, "%s %d (%d bytes)\n", color.CyanString("Files:"), files, size)
	fmt.Fprintf(out, "%s %d\n", color.CyanString("Sources:"), ingest.CountSources(chunks))
	fmt.Fprintf(out, "%s %d\n", color.CyanString("Chunks:"), len(chunks))
	if dryRun {
		fmt.Fprintln(out, color.YellowString("Dry run: embedding skipped"))
	}
	fmt.Fprintln(out, color.GreenString("Done in %s", time.Since(start).Round(time.Millisecond)))
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
