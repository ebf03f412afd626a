package wizard

import (
	"strings"

	"podbook/internal/domain/entity"
)

// TotalSteps 向导总步数
const TotalSteps = 4

// 步骤编号
const (
	StepBookType       = 1
	StepDetails        = 2
	StepSpecifications = 3
	StepContent        = 4
)

// StepDescriptor 步骤描述
type StepDescriptor struct {
	ID          string
	Title       string
	Description string
	IsComplete  func(s *State) bool
}

// StepStatus 步骤在某一状态下的展示信息
type StepStatus struct {
	Number   int    `json:"number"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
	Current  bool   `json:"current"`
}

var steps = []StepDescriptor{
	{
		ID:          "book-type",
		Title:       "Book Type",
		Description: "Choose what kind of book to create",
		IsComplete: func(s *State) bool {
			return s.BookType != ""
		},
	},
	{
		ID:          "details",
		Title:       "Book Details",
		Description: "Title, description, author and audience",
		IsComplete:  detailsComplete,
	},
	{
		ID:          "specifications",
		Title:       "Specifications",
		Description: "Target length, chapters and output format",
		// 规格与内容步骤不设硬性门槛，留给后续处理阶段校验
		IsComplete: func(*State) bool { return true },
	},
	{
		ID:          "content",
		Title:       "Content",
		Description: "RSS episodes, media uploads, text and links",
		IsComplete:  func(*State) bool { return true },
	},
}

func detailsComplete(s *State) bool {
	return strings.TrimSpace(s.Details.Title) != "" && strings.TrimSpace(s.Details.Description) != ""
}

// Steps 返回有序步骤列表
func Steps() []StepDescriptor {
	return append([]StepDescriptor(nil), steps...)
}

// StepStatuses 计算每个步骤的完成情况
func StepStatuses(s *State) []StepStatus {
	out := make([]StepStatus, 0, len(steps))
	for i, d := range steps {
		out = append(out, StepStatus{
			Number:   i + 1,
			ID:       d.ID,
			Title:    d.Title,
			Complete: d.IsComplete(s),
			Current:  s.CurrentStep == i+1,
		})
	}
	return out
}

// CanAdvance 当前步骤是否允许前进
func CanAdvance(s *State) bool {
	switch s.CurrentStep {
	case StepBookType:
		return s.BookType != ""
	case StepDetails:
		return detailsComplete(s)
	default:
		return true
	}
}

// ShouldFinalize 在内容步骤且已有单集或文件时，前进即触发完成流程
func ShouldFinalize(s *State) bool {
	return s.CurrentStep == StepContent && s.HasSelections()
}

// nextStep 前进一步，不超过最后一步
func nextStep(step int) int {
	if step >= TotalSteps {
		return TotalSteps
	}
	return step + 1
}

// prevStep 后退一步，不低于第一步
func prevStep(step int) int {
	if step <= 1 {
		return 1
	}
	return step - 1
}

// BookTypeLabel 类型的展示名称
func BookTypeLabel(t entity.BookType) string {
	switch t {
	case entity.BookTypeFiction:
		return "Fiction"
	case entity.BookTypeNonFiction:
		return "Non-Fiction"
	case entity.BookTypeBusiness:
		return "Business"
	case entity.BookTypeEducational:
		return "Educational"
	case entity.BookTypeCreative:
		return "Creative"
	case "":
		return "-"
	default:
		return string(t)
	}
}
