// Package wizard 实现书籍创建向导：状态模型、步骤控制、自动保存、估价以及上传登记
package wizard

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"podbook/internal/domain/entity"
)

var (
	// ErrInvalidBookType 书籍类型不在可选范围内
	ErrInvalidBookType = errors.New("wizard: invalid book type")
	// ErrEpisodeIndex 单集下标超出当前订阅源列表
	ErrEpisodeIndex = errors.New("wizard: episode index out of range")
	// ErrInvalidURL 参考链接不是 http/https 地址
	ErrInvalidURL = errors.New("wizard: invalid url")
)

// FileMetadata 已上传完成的文件，创建后除移除外不再变化
type FileMetadata struct {
	Name            string    `json:"name"`
	SizeBytes       int64     `json:"sizeBytes"`
	MimeType        string    `json:"mimeType"`
	LastModifiedAt  time.Time `json:"lastModifiedAt"`
	UploadPackageID string    `json:"uploadPackageId"`
	DurationSeconds float64   `json:"durationSeconds,omitempty"`
	ProjectID       string    `json:"projectId,omitempty"`
}

// ContentSources 内容来源
type ContentSources struct {
	RSSFeedURL       string
	UploadedFiles    []FileMetadata
	TextContent      string
	URLs             []string
	SelectedEpisodes map[int]struct{}
}

// State 向导的内存状态
//
// State 本身不加锁，由 Controller 独占并串行修改；对外只暴露 Clone 出的副本。
type State struct {
	CurrentStep int
	BookType    entity.BookType
	Details     entity.BookDetails
	Specs       entity.BookSpecs
	Content     ContentSources
	// Episodes 当前订阅源解析出的单集列表，选择按下标记录
	Episodes  []entity.RSSEpisode
	ProjectID string
}

// NewState 创建空状态
func NewState() *State {
	return &State{
		CurrentStep: 1,
		Specs:       entity.DefaultBookSpecs(),
		Content: ContentSources{
			SelectedEpisodes: make(map[int]struct{}),
		},
	}
}

// Clone 深拷贝
func (s *State) Clone() State {
	out := *s
	out.Content.UploadedFiles = append([]FileMetadata(nil), s.Content.UploadedFiles...)
	out.Content.URLs = append([]string(nil), s.Content.URLs...)
	out.Content.SelectedEpisodes = make(map[int]struct{}, len(s.Content.SelectedEpisodes))
	for i := range s.Content.SelectedEpisodes {
		out.Content.SelectedEpisodes[i] = struct{}{}
	}
	out.Episodes = append([]entity.RSSEpisode(nil), s.Episodes...)
	return out
}

// SetBookType 选择书籍类型
func (s *State) SetBookType(raw string) error {
	t, ok := entity.ParseBookType(raw)
	if !ok {
		return ErrInvalidBookType
	}
	s.BookType = t
	return nil
}

// SetDetails 更新书籍信息
func (s *State) SetDetails(d entity.BookDetails) {
	s.Details = d
}

// SetSpecs 更新规格，超出范围的值被截断，未知格式保留原值
func (s *State) SetSpecs(specs entity.BookSpecs) {
	s.Specs.TargetPages = clamp(specs.TargetPages, entity.MinTargetPages, entity.MaxTargetPages)
	s.Specs.TargetChapters = clamp(specs.TargetChapters, entity.MinTargetChapters, entity.MaxTargetChapters)
	if f, ok := entity.ParseBookFormat(string(specs.Format)); ok {
		s.Specs.Format = f
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetFeedURL 设置订阅源地址；地址变化时旧的单集列表与选择失效
func (s *State) SetFeedURL(feedURL string) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == s.Content.RSSFeedURL {
		return
	}
	s.Content.RSSFeedURL = feedURL
	s.Episodes = nil
	s.clearSelection()
}

// SetEpisodes 订阅源重新校验后替换单集列表，并清空选择
func (s *State) SetEpisodes(episodes []entity.RSSEpisode) {
	s.Episodes = append([]entity.RSSEpisode(nil), episodes...)
	s.clearSelection()
}

func (s *State) clearSelection() {
	s.Content.SelectedEpisodes = make(map[int]struct{})
}

// ToggleEpisode 切换单集选择
func (s *State) ToggleEpisode(i int) error {
	if i < 0 || i >= len(s.Episodes) {
		return ErrEpisodeIndex
	}
	if _, ok := s.Content.SelectedEpisodes[i]; ok {
		delete(s.Content.SelectedEpisodes, i)
		return nil
	}
	s.Content.SelectedEpisodes[i] = struct{}{}
	return nil
}

// SelectAllEpisodes 全选
func (s *State) SelectAllEpisodes() {
	s.clearSelection()
	for i := range s.Episodes {
		s.Content.SelectedEpisodes[i] = struct{}{}
	}
}

// DeselectAllEpisodes 全不选
func (s *State) DeselectAllEpisodes() {
	s.clearSelection()
}

// SelectedEpisodeIndices 已选下标，升序
func (s *State) SelectedEpisodeIndices() []int {
	out := make([]int, 0, len(s.Content.SelectedEpisodes))
	for i := range s.Content.SelectedEpisodes {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SelectedEpisodes 已选单集，按列表顺序
func (s *State) SelectedEpisodes() []entity.RSSEpisode {
	out := make([]entity.RSSEpisode, 0, len(s.Content.SelectedEpisodes))
	for _, i := range s.SelectedEpisodeIndices() {
		if i < len(s.Episodes) {
			out = append(out, s.Episodes[i])
		}
	}
	return out
}

// SetTextContent 设置自由文本
func (s *State) SetTextContent(text string) {
	s.Content.TextContent = text
}

// AddURL 添加参考链接，重复时忽略
func (s *State) AddURL(raw string) error {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	for _, existing := range s.Content.URLs {
		if existing == raw {
			return nil
		}
	}
	s.Content.URLs = append(s.Content.URLs, raw)
	return nil
}

// RemoveURL 移除参考链接
func (s *State) RemoveURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	for i, existing := range s.Content.URLs {
		if existing == raw {
			s.Content.URLs = append(s.Content.URLs[:i], s.Content.URLs[i+1:]...)
			return true
		}
	}
	return false
}

// AppendUploadedFile 追加上传完成的文件
func (s *State) AppendUploadedFile(f FileMetadata) {
	s.Content.UploadedFiles = append(s.Content.UploadedFiles, f)
}

// RemoveUploadedFile 按文件名移除第一个匹配的已上传文件
func (s *State) RemoveUploadedFile(name string) bool {
	for i, f := range s.Content.UploadedFiles {
		if f.Name == name {
			s.Content.UploadedFiles = append(s.Content.UploadedFiles[:i], s.Content.UploadedFiles[i+1:]...)
			return true
		}
	}
	return false
}

// AdoptProjectID 仅在尚无项目 ID 时采用，返回是否发生了变化
func (s *State) AdoptProjectID(id string) bool {
	if s.ProjectID != "" || id == "" {
		return false
	}
	s.ProjectID = id
	return true
}

// HasSelections 是否已有可登记的内容（单集或文件）
func (s *State) HasSelections() bool {
	return len(s.Content.SelectedEpisodes) > 0 || len(s.Content.UploadedFiles) > 0
}

// SavePayload 自动保存请求体
type SavePayload struct {
	ID      string              `json:"id,omitempty"`
	Type    entity.BookType     `json:"type"`
	Details entity.BookDetails  `json:"details"`
	Specs   entity.BookSpecs    `json:"specs"`
	Content entity.ContentDraft `json:"content"`
	Step    int                 `json:"step"`
}

// Payload 构建自动保存请求体
func (s *State) Payload() SavePayload {
	files := make([]entity.DraftFile, 0, len(s.Content.UploadedFiles))
	for _, f := range s.Content.UploadedFiles {
		files = append(files, entity.DraftFile{
			Name: f.Name,
			Size: float64(f.SizeBytes),
			Type: f.MimeType,
		})
	}

	return SavePayload{
		ID:      s.ProjectID,
		Type:    s.BookType,
		Details: s.Details,
		Specs:   s.Specs,
		Content: entity.ContentDraft{
			RSSFeed:          s.Content.RSSFeedURL,
			UploadedFiles:    files,
			TextContent:      s.Content.TextContent,
			URLs:             append(make([]string, 0, len(s.Content.URLs)), s.Content.URLs...),
			SelectedEpisodes: s.SelectedEpisodeIndices(),
		},
		Step: s.CurrentStep,
	}
}

// StateFromProject 由已持久化的项目与已登记文件还原状态，供服务端概览估价使用
func StateFromProject(p *entity.BookProject, files []*entity.ProjectFile) *State {
	s := NewState()
	s.ProjectID = p.ID
	s.BookType = p.Type
	s.Details = p.Details
	s.SetSpecs(p.Specs)
	if p.Step >= 1 && p.Step <= TotalSteps {
		s.CurrentStep = p.Step
	}
	s.Content.RSSFeedURL = p.Content.RSSFeed
	s.Content.TextContent = p.Content.TextContent
	s.Content.URLs = append([]string(nil), p.Content.URLs...)
	for _, i := range p.Content.SelectedEpisodes {
		s.Content.SelectedEpisodes[i] = struct{}{}
	}
	if len(files) == 0 {
		for _, f := range p.Content.UploadedFiles {
			s.Content.UploadedFiles = append(s.Content.UploadedFiles, FileMetadata{
				Name:      f.Name,
				SizeBytes: int64(f.Size),
				MimeType:  f.Type,
				ProjectID: p.ID,
			})
		}
	}
	for _, f := range files {
		s.Content.UploadedFiles = append(s.Content.UploadedFiles, FileMetadata{
			Name:            f.Filename,
			MimeType:        f.ContentType,
			UploadPackageID: f.URL,
			DurationSeconds: f.DurationSeconds,
			ProjectID:       f.ProjectID,
			LastModifiedAt:  f.CreatedAt,
		})
	}
	return s
}
