package wizard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// LocalFile 本地磁盘上的待上传文件
type LocalFile struct {
	path     string
	name     string
	size     int64
	mimeType string
	modTime  time.Time
}

// OpenLocalFile 读取文件信息并按内容识别 MIME 类型
func OpenLocalFile(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect mime type of %s: %w", path, err)
	}

	return &LocalFile{
		path:     path,
		name:     filepath.Base(path),
		size:     info.Size(),
		mimeType: mt.String(),
		modTime:  info.ModTime(),
	}, nil
}

func (f *LocalFile) Name() string       { return f.name }
func (f *LocalFile) Size() int64        { return f.size }
func (f *LocalFile) MimeType() string   { return f.mimeType }
func (f *LocalFile) ModTime() time.Time { return f.modTime }
func (f *LocalFile) Path() string       { return f.path }

// Open 打开文件读取内容
func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
