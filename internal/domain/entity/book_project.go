// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// BookType 书籍类型
type BookType string

const (
	BookTypeFiction     BookType = "fiction"
	BookTypeNonFiction  BookType = "non-fiction"
	BookTypeBusiness    BookType = "business"
	BookTypeEducational BookType = "educational"
	BookTypeCreative    BookType = "creative"

	// 估价表中出现但当前未开放选择的类型
	BookTypeTechnical BookType = "technical"
	BookTypeAcademic  BookType = "academic"
)

// SelectableBookTypes 向导中可选择的书籍类型，按展示顺序排列
var SelectableBookTypes = []BookType{
	BookTypeFiction,
	BookTypeNonFiction,
	BookTypeBusiness,
	BookTypeEducational,
	BookTypeCreative,
}

// ParseBookType 解析并校验书籍类型，仅接受可选择的类型
func ParseBookType(s string) (BookType, bool) {
	t := BookType(strings.ToLower(strings.TrimSpace(s)))
	for _, candidate := range SelectableBookTypes {
		if candidate == t {
			return t, true
		}
	}
	return "", false
}

// BookFormat 输出格式
type BookFormat string

const (
	BookFormatPDF  BookFormat = "pdf"
	BookFormatEPUB BookFormat = "epub"
	BookFormatMOBI BookFormat = "mobi"
)

// ParseBookFormat 解析输出格式
func ParseBookFormat(s string) (BookFormat, bool) {
	switch f := BookFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case BookFormatPDF, BookFormatEPUB, BookFormatMOBI:
		return f, true
	default:
		return "", false
	}
}

// 书籍规格范围
const (
	MinTargetPages     = 50
	MaxTargetPages     = 500
	MinTargetChapters  = 3
	MaxTargetChapters  = 50
	DefaultTargetPages = 200
	DefaultChapters    = 12
)

// BookDetails 书籍基本信息
type BookDetails struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Audience    string `json:"audience"`
}

// BookSpecs 书籍规格
type BookSpecs struct {
	TargetPages    int        `json:"targetPages"`
	TargetChapters int        `json:"targetChapters"`
	Format         BookFormat `json:"format"`
}

// DefaultBookSpecs 返回默认规格
func DefaultBookSpecs() BookSpecs {
	return BookSpecs{
		TargetPages:    DefaultTargetPages,
		TargetChapters: DefaultChapters,
		Format:         BookFormatPDF,
	}
}

// DraftFile 草稿中的已上传文件摘要
type DraftFile struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
	Type string  `json:"type"`
}

// ContentDraft 草稿中的内容来源
type ContentDraft struct {
	RSSFeed          string      `json:"rssFeed"`
	UploadedFiles    []DraftFile `json:"uploadedFiles"`
	TextContent      string      `json:"textContent"`
	URLs             []string    `json:"urls"`
	SelectedEpisodes []int       `json:"selectedEpisodes"`
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusSubmitted  ProjectStatus = "submitted"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// BookProject 书籍项目实体（向导自动保存的持久化对应物）
type BookProject struct {
	ID        string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID   string        `json:"owner_id" gorm:"type:uuid;index;not null"`
	Type      BookType      `json:"type" gorm:"type:varchar(32)"`
	Details   BookDetails   `json:"details" gorm:"type:jsonb;serializer:json"`
	Specs     BookSpecs     `json:"specs" gorm:"type:jsonb;serializer:json"`
	Content   ContentDraft  `json:"content" gorm:"type:jsonb;serializer:json"`
	Step      int           `json:"step" gorm:"default:1"`
	Status    ProjectStatus `json:"status" gorm:"type:varchar(32);default:'draft'"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (BookProject) TableName() string {
	return "book_projects"
}

// NewBookProject 创建新项目草稿
func NewBookProject(ownerID string) *BookProject {
	now := time.Now()
	return &BookProject{
		OwnerID:   ownerID,
		Specs:     DefaultBookSpecs(),
		Step:      1,
		Status:    ProjectStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEditable 检查项目草稿是否还能被自动保存覆盖
func (p *BookProject) IsEditable() bool {
	return p.Status == ProjectStatusDraft || p.Status == ProjectStatusSubmitted
}

// OwnedBy 检查项目归属
func (p *BookProject) OwnedBy(userID string) bool {
	return p.OwnerID == userID
}
