package wizard

import (
	"context"
	"io"
	"time"

	"podbook/internal/domain/entity"
)

// ProjectStore 项目持久化服务
type ProjectStore interface {
	// SaveProject 保存草稿并返回服务端项目 ID（新建或已有）
	SaveProject(ctx context.Context, payload *SavePayload) (string, error)
	// RegisterEpisodes 登记已选单集
	RegisterEpisodes(ctx context.Context, projectID string, episodes []entity.RSSEpisode) error
	// RegisterFiles 登记已上传文件
	RegisterFiles(ctx context.Context, projectID string, files []FileRegistration) error
}

// EpisodeSource 订阅源解析服务
type EpisodeSource interface {
	FetchEpisodes(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error)
}

// FileRegistration 文件登记条目
type FileRegistration struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	// Size 沿用对端约定，取值为时长秒数
	Size        float64 `json:"size"`
	ContentType string  `json:"contentType"`
	Duration    float64 `json:"duration"`
}

// CredentialRequest 上传凭证请求
type CredentialRequest struct {
	UserEmail        string
	OriginalFilename string
	ProjectID        string
	LanguageCode     string
	ContentType      string
}

// UploadCredentials 预签名 POST 凭证
type UploadCredentials struct {
	PackageGUID    string `json:"podiumPackageGuid"`
	URL            string `json:"url"`
	Key            string `json:"key"`
	AWSAccessKeyID string `json:"AWSAccessKeyId"`
	Policy         string `json:"policy"`
	Signature      string `json:"signature"`
}

// CredentialIssuer 上传凭证服务
type CredentialIssuer interface {
	CreatePackage(ctx context.Context, req CredentialRequest) (*UploadCredentials, error)
}

// ProgressFunc 传输进度回调，取值 0..100
type ProgressFunc func(percent int)

// ObjectUploader 对象存储上传
type ObjectUploader interface {
	Upload(ctx context.Context, creds *UploadCredentials, file FileHandle, progress ProgressFunc) error
}

// DurationProber 媒体时长探测
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Navigator 完成后的路由跳转
type Navigator interface {
	Navigate(ctx context.Context, route string) error
}

// NavigatorFunc 函数适配器
type NavigatorFunc func(ctx context.Context, route string) error

// Navigate 实现 Navigator
func (f NavigatorFunc) Navigate(ctx context.Context, route string) error {
	return f(ctx, route)
}

// FileHandle 待上传文件
type FileHandle interface {
	Name() string
	Size() int64
	MimeType() string
	ModTime() time.Time
	Path() string
	Open() (io.ReadCloser, error)
}

// Identity 上传凭证请求使用的会话身份
type Identity struct {
	Email        string
	LanguageCode string
	ContentType  string
}
