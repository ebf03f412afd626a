package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"podbook/pkg/logger"
	"podbook/pkg/metrics"
)

// UploadStatus 单个文件的上传状态
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadCompleted UploadStatus = "completed"
	UploadError     UploadStatus = "error"
)

// IsTerminal 是否为终态
func (s UploadStatus) IsTerminal() bool {
	return s == UploadCompleted || s == UploadError
}

// UploadingFile 上传中的文件（临时状态，不持久化）
type UploadingFile struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	SizeBytes int64        `json:"sizeBytes"`
	MimeType  string       `json:"mimeType"`
	Progress  int          `json:"progress"`
	Status    UploadStatus `json:"status"`
	Error     string       `json:"error,omitempty"`

	file FileHandle
}

// UploadSummary 一轮上传的结果
type UploadSummary struct {
	Completed int
	Failed    int
}

// Registrar 上传登记器
//
// 每个文件独立走 pending -> uploading -> completed|error；完成的文件从临时列表移出，
// 并且只回调一次 onComplete，失败的文件留在列表中供展示。
// 同一时刻只有一轮 Run 在处理队列，并发上限始终是 concurrency。
type Registrar struct {
	creds       CredentialIssuer
	uploader    ObjectUploader
	prober      DurationProber
	identity    Identity
	concurrency int

	ensureProject func(ctx context.Context) (string, error)
	onComplete    func(FileMetadata)

	runMu sync.Mutex

	mu    sync.Mutex
	files []*UploadingFile
}

// Enqueue 加入待上传文件，返回各文件的临时 ID
func (r *Registrar) Enqueue(handles ...FileHandle) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(handles))
	for _, h := range handles {
		f := &UploadingFile{
			ID:        uuid.NewString(),
			Name:      h.Name(),
			SizeBytes: h.Size(),
			MimeType:  h.MimeType(),
			Status:    UploadPending,
			file:      h,
		}
		r.files = append(r.files, f)
		ids = append(ids, f.ID)
	}
	return ids
}

// Run 按加入顺序处理所有待上传文件，并发度由 concurrency 限制
//
// 前一轮未结束时阻塞等待，随后只处理仍为 pending 的文件。
func (r *Registrar) Run(ctx context.Context) (UploadSummary, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	r.mu.Lock()
	pending := make([]*UploadingFile, 0, len(r.files))
	for _, f := range r.files {
		if f.Status == UploadPending {
			pending = append(pending, f)
		}
	}
	r.mu.Unlock()

	limit := r.concurrency
	if limit < 1 {
		limit = 1
	}

	var (
		g       errgroup.Group
		summary UploadSummary
		sumMu   sync.Mutex
	)
	g.SetLimit(limit)

	for _, f := range pending {
		g.Go(func() error {
			status := r.process(ctx, f)
			sumMu.Lock()
			switch status {
			case UploadCompleted:
				summary.Completed++
			case UploadError:
				summary.Failed++
			}
			sumMu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return summary, err
}

// Files 临时列表快照
func (r *Registrar) Files() []UploadingFile {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]UploadingFile, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, *f)
	}
	return out
}

// Dismiss 从临时列表中移除处于终态的文件
func (r *Registrar) Dismiss(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.files {
		if f.ID == id && f.Status.IsTerminal() {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return true
		}
	}
	return false
}

// process 返回文件的终态；文件已不是 pending 时跳过并返回空状态
func (r *Registrar) process(ctx context.Context, f *UploadingFile) UploadStatus {
	if !r.begin(f) {
		return ""
	}

	duration := r.probeDuration(ctx, f.file)

	projectID, err := r.ensureProject(ctx)
	if err != nil {
		return r.fail(ctx, f, fmt.Errorf("ensure project: %w", err))
	}

	creds, err := r.creds.CreatePackage(ctx, CredentialRequest{
		UserEmail:        r.identity.Email,
		OriginalFilename: f.Name,
		ProjectID:        projectID,
		LanguageCode:     r.identity.LanguageCode,
		ContentType:      r.identity.ContentType,
	})
	if err != nil {
		return r.fail(ctx, f, fmt.Errorf("request upload credentials: %w", err))
	}

	if err := r.uploader.Upload(ctx, creds, f.file, func(p int) { r.setProgress(f, p) }); err != nil {
		return r.fail(ctx, f, fmt.Errorf("transfer: %w", err))
	}

	r.complete(ctx, f, FileMetadata{
		Name:            f.Name,
		SizeBytes:       f.SizeBytes,
		MimeType:        f.MimeType,
		LastModifiedAt:  f.file.ModTime(),
		UploadPackageID: creds.PackageGUID,
		DurationSeconds: duration,
		ProjectID:       projectID,
	})
	return UploadCompleted
}

// probeDuration 仅探测音视频；任何失败都按 0 处理
func (r *Registrar) probeDuration(ctx context.Context, h FileHandle) float64 {
	if r.prober == nil || !IsMediaType(h.MimeType()) {
		return 0
	}
	d, err := r.prober.ProbeDuration(ctx, h.Path())
	if err != nil {
		logger.Debug(ctx, "duration probe failed", "file", h.Name(), "error", err.Error())
		return 0
	}
	return d
}

// IsMediaType 音频或视频
func IsMediaType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/") || strings.HasPrefix(mimeType, "video/")
}

func (r *Registrar) begin(f *UploadingFile) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.Status != UploadPending {
		return false
	}
	f.Status = UploadUploading
	f.Progress = 0
	return true
}

func (r *Registrar) setProgress(f *UploadingFile, p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	r.mu.Lock()
	if f.Status == UploadUploading {
		f.Progress = p
	}
	r.mu.Unlock()
}

func (r *Registrar) fail(ctx context.Context, f *UploadingFile, err error) UploadStatus {
	r.mu.Lock()
	f.Status = UploadError
	f.Error = err.Error()
	r.mu.Unlock()

	metrics.UploadTotal.WithLabelValues(string(UploadError)).Inc()
	logger.Warn(ctx, "file upload failed", "file", f.Name, "error", err.Error())
	return UploadError
}

func (r *Registrar) complete(ctx context.Context, f *UploadingFile, meta FileMetadata) {
	r.mu.Lock()
	if f.Status != UploadUploading {
		r.mu.Unlock()
		return
	}
	f.Status = UploadCompleted
	f.Progress = 100
	for i, cur := range r.files {
		if cur == f {
			r.files = append(r.files[:i], r.files[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	metrics.UploadTotal.WithLabelValues(string(UploadCompleted)).Inc()
	metrics.UploadBytes.Add(float64(meta.SizeBytes))
	logger.Info(ctx, "file uploaded", "file", meta.Name, "package_id", meta.UploadPackageID, "duration_seconds", meta.DurationSeconds)

	if r.onComplete != nil {
		r.onComplete(meta)
	}
}
