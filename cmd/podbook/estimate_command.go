package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podbook/internal/application/wizard"
	"podbook/internal/domain/entity"
	"podbook/internal/infrastructure/media"
)

type bookFlags struct {
	bookType string
	pages    int
	chapters int
	format   string
	text     string
	textFile string
}

func (f *bookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.bookType, "type", "", "Book type (fiction, non-fiction, business, educational, creative)")
	cmd.Flags().IntVar(&f.pages, "pages", entity.DefaultTargetPages, "Target page count")
	cmd.Flags().IntVar(&f.chapters, "chapters", entity.DefaultChapters, "Target chapter count")
	cmd.Flags().StringVar(&f.format, "format", string(entity.BookFormatPDF), "Output format (pdf, epub, mobi)")
	cmd.Flags().StringVar(&f.text, "text", "", "Free-form text content")
	cmd.Flags().StringVar(&f.textFile, "text-file", "", "Read free-form text content from a file")
}

func (f *bookFlags) specs() entity.BookSpecs {
	return entity.BookSpecs{
		TargetPages:    f.pages,
		TargetChapters: f.chapters,
		Format:         entity.BookFormat(f.format),
	}
}

func (f *bookFlags) textContent() (string, error) {
	if f.textFile == "" {
		return f.text, nil
	}
	data, err := os.ReadFile(f.textFile)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	if f.text == "" {
		return string(data), nil
	}
	return f.text + "\n" + string(data), nil
}

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var (
		book   bookFlags
		files  []string
		policy string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate price, word count and chapters for a book without saving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			state := wizard.NewState()
			if book.bookType != "" {
				if err := state.SetBookType(book.bookType); err != nil {
					return fmt.Errorf("%w: %q", err, book.bookType)
				}
			}
			state.SetSpecs(book.specs())
			text, err := book.textContent()
			if err != nil {
				return err
			}
			state.SetTextContent(text)

			prober := media.NewProber(cfg.Clients.FFprobe.Binary, cfg.Clients.FFprobe.Timeout)
			for _, path := range files {
				lf, err := wizard.OpenLocalFile(path)
				if err != nil {
					return err
				}
				meta := wizard.FileMetadata{
					Name:           lf.Name(),
					SizeBytes:      lf.Size(),
					MimeType:       lf.MimeType(),
					LastModifiedAt: lf.ModTime(),
				}
				if wizard.IsMediaType(lf.MimeType()) {
					seconds, err := prober.ProbeDuration(cmd.Context(), lf.Path())
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not read duration of %s: %v\n", lf.Name(), err)
					}
					meta.DurationSeconds = seconds
				}
				state.AppendUploadedFile(meta)
			}

			policies, err := selectPolicies(policy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEstimates(state, policies))
			return nil
		},
	}

	book.register(cmd)
	cmd.Flags().StringArrayVar(&files, "file", nil, "Local content file; media files are probed for duration (repeatable)")
	cmd.Flags().StringVar(&policy, "policy", "all", "Pricing policy: flat, duration or all")
	return cmd
}

func selectPolicies(name string) ([]wizard.PricingPolicy, error) {
	if strings.EqualFold(strings.TrimSpace(name), "all") {
		return []wizard.PricingPolicy{wizard.DefaultFlatPolicy(), wizard.DefaultDurationPolicy()}, nil
	}
	p, err := wizard.PolicyByName(name)
	if err != nil {
		return nil, err
	}
	return []wizard.PricingPolicy{p}, nil
}

func renderEstimates(state *wizard.State, policies []wizard.PricingPolicy) string {
	cols := []column{left("")}
	estimates := make([]wizard.Estimate, 0, len(policies))
	for _, p := range policies {
		cols = append(cols, right(p.Name()))
		estimates = append(estimates, wizard.ComputeEstimate(state, p))
	}

	row := func(label string, value func(e wizard.Estimate) string) []string {
		r := []string{label}
		for _, e := range estimates {
			r = append(r, value(e))
		}
		return r
	}

	rows := [][]string{
		row("Total price", func(e wizard.Estimate) string { return "$" + strconv.Itoa(e.TotalPrice) }),
		row("Processing fee", func(e wizard.Estimate) string { return "$" + strconv.FormatFloat(e.ProcessingFee, 'f', -1, 64) }),
		row("Complexity", func(e wizard.Estimate) string { return strconv.FormatFloat(e.Multiplier, 'f', -1, 64) + "x" }),
		row("Estimated words", func(e wizard.Estimate) string { return strconv.Itoa(e.EstimatedWords) }),
		row("Recommended chapters", func(e wizard.Estimate) string { return strconv.Itoa(e.RecommendedChapters) }),
		row("Content duration", func(e wizard.Estimate) string { return e.ContentDuration }),
	}
	return renderTable(cols, rows)
}
