package main

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bibbank/fraudscore/internal/application/dto"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/service"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
	"github.com/bibbank/fraudscore/internal/infrastructure/ingest"
)

type scoreOutput struct {
	Summary model.BatchSummary `json:"summary"`
	Fields  []string           `json:"fields"`
	Model   string             `json:"model"`
	Samples []dto.RowResult    `json:"samples,omitempty"`
	Results []dto.RowResult    `json:"results,omitempty"`
}

type scoreOptions struct {
	kind       string
	all        bool
	noProgress bool
}

func scoreCmd(v *viper.Viper) *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Score every row of a CSV or PDF file",
		Long: `Score a CSV file or a PDF holding a CSV-like table, the same way the
upload endpoints do. The JSON summary goes to stdout, progress to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, v, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "file kind, csv or pdf (default: from extension)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "print every row instead of the first labeled samples")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")
	addModelFlags(cmd, v)
	return cmd
}

func runScore(cmd *cobra.Command, v *viper.Viper, path string, opts scoreOptions) error {
	kind, err := fileKind(path, opts.kind)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	fields, rows, err := ingest.Parser{Limit: model.MaxBatchRows}.Parse(kind, data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	loaded := loadModel(v)
	defer loaded.Close()

	bar := newProgressBar(cmd.ErrOrStderr(), min(len(rows), model.MaxBatchRows), opts.noProgress)
	result := service.NewBatchScorer(loaded.Scorer, nil).Score(cmd.Context(), fields, rows, func(model.RowResult) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	out := scoreOutput{Summary: result.Summary, Fields: result.Fields, Model: loaded.Source}
	if opts.all {
		out.Results = make([]dto.RowResult, 0, len(result.Results))
		for _, r := range result.Results {
			out.Results = append(out.Results, dto.FromRowResult(r))
		}
	} else {
		for _, r := range result.Samples() {
			out.Samples = append(out.Samples, dto.FromRowResult(r))
		}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func fileKind(path, explicit string) (valueobject.FileKind, error) {
	if explicit != "" {
		return valueobject.FileKindFromString(explicit)
	}
	kind, err := valueobject.FileKindFromName(path)
	if err != nil {
		return valueobject.FileKind{}, fmt.Errorf("cannot infer file kind of %s, use --kind", path)
	}
	return kind, nil
}

func newProgressBar(w io.Writer, total int, hidden bool) *progressbar.ProgressBar {
	if hidden {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("scoring rows"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}
