package entity

import "time"

// ProjectEpisode 登记到项目的 RSS 单集
type ProjectEpisode struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID     string    `json:"project_id" gorm:"type:uuid;index;not null"`
	EpisodeID     string    `json:"episode_id" gorm:"type:varchar(512)"`
	Title         string    `json:"title" gorm:"type:text"`
	Link          string    `json:"link,omitempty" gorm:"type:text"`
	PublishedAt   string    `json:"published_at,omitempty" gorm:"type:varchar(64)"`
	DurationLabel string    `json:"duration_label,omitempty" gorm:"type:varchar(32)"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ProjectEpisode) TableName() string {
	return "project_episodes"
}

// ProjectFile 登记到项目的上传文件
type ProjectFile struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID       string    `json:"project_id" gorm:"type:uuid;index;not null"`
	Filename        string    `json:"filename" gorm:"type:text;not null"`
	URL             string    `json:"url" gorm:"type:text"`
	ContentType     string    `json:"content_type" gorm:"type:varchar(128)"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ProjectFile) TableName() string {
	return "project_files"
}

// RSSEpisode 订阅源中的单集（只读，来自订阅源解析）
type RSSEpisode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Link          string `json:"link,omitempty"`
	PublishedAt   string `json:"publishedAt,omitempty"`
	DurationLabel string `json:"durationLabel,omitempty"`
}

// NewProjectEpisode 将单集登记到项目
func NewProjectEpisode(projectID string, ep RSSEpisode) *ProjectEpisode {
	return &ProjectEpisode{
		ProjectID:     projectID,
		EpisodeID:     ep.ID,
		Title:         ep.Title,
		Link:          ep.Link,
		PublishedAt:   ep.PublishedAt,
		DurationLabel: ep.DurationLabel,
	}
}
