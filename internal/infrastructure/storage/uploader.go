// Package storage 以预签名 POST 方式将文件上传到对象存储
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"podbook/internal/application/wizard"
	"podbook/internal/config"
)

var tracer = otel.Tracer("storage")

// StatusError 存储端返回非 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("storage: HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("storage: HTTP %d", e.StatusCode)
}

// Uploader 预签名 POST 上传器
type Uploader struct {
	http *http.Client
}

// NewUploader 创建上传器；超时为 0 表示不限制
func NewUploader(cfg *config.StorageClientConfig) *Uploader {
	return &Uploader{http: &http.Client{Timeout: cfg.Timeout}}
}

// Upload 发送凭证字段与文件内容，按已写出的字节比例回调进度
func (u *Uploader) Upload(ctx context.Context, creds *wizard.UploadCredentials, file wizard.FileHandle, progress wizard.ProgressFunc) error {
	ctx, span := tracer.Start(ctx, "storage.Upload",
		trace.WithAttributes(
			attribute.String("file.name", file.Name()),
			attribute.Int64("file.size", file.Size()),
		))
	defer span.End()

	if creds == nil || creds.URL == "" {
		return errors.New("storage: missing upload url")
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", file.Name(), err)
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pw.CloseWithError(writeForm(mw, creds, file, &progressReader{r: src, total: file.Size(), report: progress}))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.URL, pr)
	if err != nil {
		pr.CloseWithError(err)
		wg.Wait()
		return fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.http.Do(req)
	// 让写协程在请求失败时尽快退出
	pr.CloseWithError(io.ErrClosedPipe)
	wg.Wait()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("storage: post: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		span.RecordError(err)
		return err
	}

	if progress != nil {
		progress(100)
	}
	return nil
}

// writeForm 字段顺序固定，file 必须放在最后
func writeForm(mw *multipart.Writer, creds *wizard.UploadCredentials, file wizard.FileHandle, body io.Reader) error {
	fields := [][2]string{
		{"key", creds.Key},
		{"AWSAccessKeyId", creds.AWSAccessKeyID},
		{"policy", creds.Policy},
		{"signature", creds.Signature},
		{"Content-Type", file.MimeType()},
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", file.Name())
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report wizard.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.report != nil && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		// 请求完成前最多报告 99
		pct = min(pct, 99)
		if pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
