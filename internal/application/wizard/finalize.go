package wizard

import (
	"context"
	"fmt"

	"podbook/pkg/logger"
	"podbook/pkg/metrics"
)

// FinalizationError 完成流程无法获得项目 ID，向导停留在当前步骤
type FinalizationError struct {
	Err error
}

func (e *FinalizationError) Error() string {
	if e.Err == nil {
		return "finalization aborted: no project id"
	}
	return fmt.Sprintf("finalization aborted: no project id: %v", e.Err)
}

func (e *FinalizationError) Unwrap() error {
	return e.Err
}

// Finalize 立即执行完成流程：确保项目已保存，登记内容并跳转
func (c *Controller) Finalize(ctx context.Context) (AdvanceResult, error) {
	return c.finalize(ctx)
}

func (c *Controller) finalize(ctx context.Context) (AdvanceResult, error) {
	step := c.State().CurrentStep

	// 绕过防抖，保证最新状态与项目 ID 落库
	projectID, err := c.autosave.Flush(ctx)
	if projectID == "" {
		projectID = c.projectID()
	}
	if projectID == "" {
		metrics.FinalizationTotal.WithLabelValues("aborted").Inc()
		if err == nil {
			err = ErrNoProjectID
		}
		return AdvanceResult{Step: step}, &FinalizationError{Err: err}
	}
	if err != nil {
		logger.Warn(ctx, "final save failed, continuing with known project", "project_id", projectID, "error", err.Error())
	}

	ctx = logger.WithContext(ctx, logger.ProjectIDKey, projectID)
	state := c.State()

	if episodes := state.SelectedEpisodes(); len(episodes) > 0 {
		if err := c.store.RegisterEpisodes(ctx, projectID, episodes); err != nil {
			logger.Error(ctx, "failed to register episodes", err, "count", len(episodes))
		}
	}

	if files := state.Content.UploadedFiles; len(files) > 0 {
		if err := c.store.RegisterFiles(ctx, projectID, fileRegistrations(files)); err != nil {
			logger.Error(ctx, "failed to register files", err, "count", len(files))
		}
	}

	route := fmt.Sprintf(c.projectRoute, projectID)
	if err := c.navigator.Navigate(ctx, route); err != nil {
		metrics.FinalizationTotal.WithLabelValues("error").Inc()
		return AdvanceResult{Step: step}, fmt.Errorf("navigate to %s: %w", route, err)
	}

	metrics.FinalizationTotal.WithLabelValues("ok").Inc()
	logger.Info(ctx, "wizard finalized", "route", route)
	return AdvanceResult{Step: step, Finalized: true, Route: route}, nil
}

func fileRegistrations(files []FileMetadata) []FileRegistration {
	out := make([]FileRegistration, 0, len(files))
	for _, f := range files {
		out = append(out, FileRegistration{
			Filename:    f.Name,
			URL:         f.UploadPackageID,
			Size:        f.DurationSeconds,
			ContentType: f.MimeType,
			Duration:    f.DurationSeconds,
		})
	}
	return out
}
