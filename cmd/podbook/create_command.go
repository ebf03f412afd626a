package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podbook/internal/application/wizard"
	"podbook/internal/config"
	"podbook/internal/domain/entity"
	"podbook/internal/infrastructure/media"
	"podbook/internal/infrastructure/podbookapi"
	"podbook/internal/infrastructure/podium"
	"podbook/internal/infrastructure/storage"
)

type createOptions struct {
	book     bookFlags
	details  entity.BookDetails
	feed     string
	episodes string
	files    []string
	urls     []string
	email    string
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Walk through the book wizard and submit the selected content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runCreate(cmd.Context(), cmd.OutOrStdout(), cfg, &opts)
		},
	}

	opts.book.register(cmd)
	cmd.Flags().StringVar(&opts.details.Title, "title", "", "Book title")
	cmd.Flags().StringVar(&opts.details.Description, "description", "", "Book description")
	cmd.Flags().StringVar(&opts.details.Author, "author", "", "Author name")
	cmd.Flags().StringVar(&opts.details.Audience, "audience", "", "Target audience")
	cmd.Flags().StringVar(&opts.feed, "feed", "", "Podcast RSS feed URL")
	cmd.Flags().StringVar(&opts.episodes, "episodes", "all", "Episode indices to include, comma separated, or \"all\"")
	cmd.Flags().StringArrayVar(&opts.files, "file", nil, "Audio, video or document file to upload (repeatable)")
	cmd.Flags().StringArrayVar(&opts.urls, "url", nil, "Reference URL (repeatable)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Uploader email sent with upload credential requests")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newController(ctx context.Context, out io.Writer, cfg *config.Config, email string) *wizard.Controller {
	api := podbookapi.NewClient(&cfg.Clients.Podbook)

	identity := wizard.Identity{
		Email:        cfg.Clients.Podium.IdentityEmail,
		LanguageCode: cfg.Clients.Podium.LanguageCode,
		ContentType:  cfg.Clients.Podium.DefaultContentType,
	}
	if email != "" {
		identity.Email = email
	}

	navigator := wizard.NavigatorFunc(func(_ context.Context, route string) error {
		fmt.Fprintf(out, "Project submitted: %s\n", route)
		return nil
	})

	return wizard.New(ctx, api, navigator,
		wizard.WithAutosaveDelay(cfg.Wizard.AutosaveDebounce),
		wizard.WithSavedIndicator(cfg.Wizard.SavedIndicator),
		wizard.WithEpisodeSource(api),
		wizard.WithUploads(
			podium.NewClient(&cfg.Clients.Podium),
			storage.NewUploader(&cfg.Clients.Storage),
			media.NewProber(cfg.Clients.FFprobe.Binary, cfg.Clients.FFprobe.Timeout),
		),
		wizard.WithIdentity(identity),
		wizard.WithUploadConcurrency(cfg.Wizard.UploadConcurrency),
		wizard.WithProjectRoute(cfg.Wizard.ProjectRoute),
	)
}

func runCreate(ctx context.Context, out io.Writer, cfg *config.Config, opts *createOptions) error {
	ctrl := newController(ctx, out, cfg, opts.email)
	defer ctrl.Close()

	if err := ctrl.SelectBookType(opts.book.bookType); err != nil {
		return fmt.Errorf("%w: %q", err, opts.book.bookType)
	}
	if err := advance(ctx, ctrl); err != nil {
		return err
	}

	ctrl.SetDetails(opts.details)
	if err := advance(ctx, ctrl); err != nil {
		return err
	}

	ctrl.SetSpecs(opts.book.specs())
	if err := advance(ctx, ctrl); err != nil {
		return err
	}

	if err := fillContent(ctx, out, ctrl, opts); err != nil {
		return err
	}

	policy, err := wizard.PolicyByName(cfg.Wizard.PricingPolicy)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderSteps(ctrl.Steps()))
	fmt.Fprintln(out, renderEstimates(ptr(ctrl.State()), []wizard.PricingPolicy{policy}))

	res, err := ctrl.Advance(ctx)
	if err != nil {
		var finErr *wizard.FinalizationError
		if errors.As(err, &finErr) {
			return fmt.Errorf("could not submit project: %w", finErr.Err)
		}
		return err
	}
	if !res.Finalized {
		return errors.New("nothing to submit: select at least one episode or upload a file")
	}
	return nil
}

func advance(ctx context.Context, ctrl *wizard.Controller) error {
	before := ctrl.State().CurrentStep
	res, err := ctrl.Advance(ctx)
	if err != nil {
		return err
	}
	if !res.Moved {
		return fmt.Errorf("step %d is incomplete", before)
	}
	return nil
}

func fillContent(ctx context.Context, out io.Writer, ctrl *wizard.Controller, opts *createOptions) error {
	if opts.feed != "" {
		episodes, err := ctrl.ValidateFeed(ctx, opts.feed)
		if err != nil {
			return fmt.Errorf("validate feed: %w", err)
		}
		if err := selectEpisodes(ctrl, opts.episodes, len(episodes)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Selected %d of %d episodes.\n", len(ctrl.State().Content.SelectedEpisodes), len(episodes))
	}

	text, err := opts.book.textContent()
	if err != nil {
		return err
	}
	if text != "" {
		ctrl.SetTextContent(text)
	}
	for _, u := range opts.urls {
		if err := ctrl.AddURL(u); err != nil {
			return fmt.Errorf("%w: %q", err, u)
		}
	}

	if len(opts.files) == 0 {
		return nil
	}
	handles := make([]wizard.FileHandle, 0, len(opts.files))
	for _, path := range opts.files {
		lf, err := wizard.OpenLocalFile(path)
		if err != nil {
			return err
		}
		handles = append(handles, lf)
	}
	summary, err := ctrl.Upload(ctx, handles...)
	fmt.Fprintln(out, renderUploads(ctrl.Uploads()))
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		fmt.Fprintf(out, "%d upload(s) failed; continuing with %d completed.\n", summary.Failed, summary.Completed)
	}
	return nil
}

func selectEpisodes(ctrl *wizard.Controller, selection string, total int) error {
	selection = strings.TrimSpace(selection)
	switch selection {
	case "", "none":
		return nil
	case "all":
		ctrl.SelectAllEpisodes()
		return nil
	}
	for _, part := range strings.Split(selection, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid episode index %q", part)
		}
		if err := ctrl.ToggleEpisode(i); err != nil {
			return fmt.Errorf("%w: %d (feed has %d episodes)", err, i, total)
		}
	}
	return nil
}

func renderSteps(steps []wizard.StepStatus) string {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		mark := ""
		switch {
		case s.Current:
			mark = "current"
		case s.Complete:
			mark = "done"
		}
		rows = append(rows, []string{strconv.Itoa(s.Number), s.Title, mark})
	}
	return renderTable([]column{right("Step"), left("Title"), left("State")}, rows)
}

func renderUploads(files []wizard.UploadingFile) string {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, string(f.Status), strconv.Itoa(f.Progress) + "%", f.Error})
	}
	return renderTable([]column{left("File"), left("Status"), right("Progress"), left("Error")}, rows)
}

func ptr[T any](v T) *T {
	return &v
}
