package wizard

import (
	"fmt"
	"math"
	"strings"

	"podbook/internal/domain/entity"
)

// 估价常量
const (
	BasePricePerPage     = 2.5
	FlatProcessingFee    = 25.0
	DurationFeePerHour   = 5.0
	WordsPerChapter      = 4500
	SpokenWordsPerMinute = 150
)

// PricingPolicy 内容处理费的计算策略，调用方显式传入
type PricingPolicy interface {
	Name() string
	ContentProcessingFee(s *State) float64
}

// FlatFeeFromCount 向导步骤使用的固定处理费
type FlatFeeFromCount struct {
	Fee float64
}

// Name 策略名
func (FlatFeeFromCount) Name() string { return "flat" }

// ContentProcessingFee 固定费用
func (p FlatFeeFromCount) ContentProcessingFee(*State) float64 {
	return p.Fee
}

// FeeFromContentDuration 项目概览使用的按内容时长计费
type FeeFromContentDuration struct {
	PerHour float64
}

// Name 策略名
func (FeeFromContentDuration) Name() string { return "duration" }

// ContentProcessingFee 每小时内容计费，小时数四舍五入
func (p FeeFromContentDuration) ContentProcessingFee(s *State) float64 {
	return p.PerHour * roundHalfUp(totalDurationSeconds(s)/3600)
}

// DefaultFlatPolicy 默认固定费用策略
func DefaultFlatPolicy() PricingPolicy {
	return FlatFeeFromCount{Fee: FlatProcessingFee}
}

// DefaultDurationPolicy 默认按时长计费策略
func DefaultDurationPolicy() PricingPolicy {
	return FeeFromContentDuration{PerHour: DurationFeePerHour}
}

// PolicyByName 按名称选择估价策略
func PolicyByName(name string) (PricingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "flat":
		return DefaultFlatPolicy(), nil
	case "duration":
		return DefaultDurationPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown pricing policy %q", name)
	}
}

// ComplexityMultiplier 书籍类型的复杂度系数
func ComplexityMultiplier(t entity.BookType) float64 {
	switch t {
	case entity.BookTypeTechnical, entity.BookTypeAcademic:
		return 1.3
	case entity.BookTypeCreative:
		return 0.9
	case entity.BookTypeBusiness:
		return 1.1
	default:
		return 1.0
	}
}

// TotalPriceEstimate 总价估算（美元，整数）
func TotalPriceEstimate(s *State, policy PricingPolicy) int {
	if policy == nil {
		policy = DefaultFlatPolicy()
	}
	base := BasePricePerPage * float64(s.Specs.TargetPages) * ComplexityMultiplier(s.BookType)
	return int(roundHalfUp(base + policy.ContentProcessingFee(s)))
}

// EstimatedWordCount 文本字数加上已上传媒体按语速折算的字数
func EstimatedWordCount(s *State) int {
	words := len(strings.Fields(s.Content.TextContent))
	minutes := totalDurationSeconds(s) / 60
	return words + int(roundHalfUp(minutes*SpokenWordsPerMinute))
}

// RecommendedChapters 推荐章节数；无内容时沿用目标章节数
func RecommendedChapters(s *State) int {
	words := EstimatedWordCount(s)
	if words <= 0 {
		return s.Specs.TargetChapters
	}
	fromWords := math.Ceil(float64(words) / WordsPerChapter)
	sum := fromWords + float64(s.Specs.TargetChapters) + float64(len(s.Content.UploadedFiles))
	return int(roundHalfUp(sum / 3))
}

// ContentDurationLabel 已上传内容总时长，满一小时显示 H:MM，否则显示 "<n> min"
func ContentDurationLabel(s *State) string {
	return FormatDuration(totalDurationSeconds(s))
}

// FormatDuration 秒数格式化为时长标签
func FormatDuration(seconds float64) string {
	minutes := int(roundHalfUp(seconds / 60))
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%d min", minutes)
}

func totalDurationSeconds(s *State) float64 {
	var total float64
	for _, f := range s.Content.UploadedFiles {
		total += f.DurationSeconds
	}
	return total
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Estimate 估算结果
type Estimate struct {
	Policy              string  `json:"policy"`
	TotalPrice          int     `json:"totalPrice"`
	ProcessingFee       float64 `json:"processingFee"`
	Multiplier          float64 `json:"multiplier"`
	EstimatedWords      int     `json:"estimatedWords"`
	RecommendedChapters int     `json:"recommendedChapters"`
	ContentDuration     string  `json:"contentDuration"`
}

// ComputeEstimate 汇总展示所需的全部估算值
func ComputeEstimate(s *State, policy PricingPolicy) Estimate {
	if policy == nil {
		policy = DefaultFlatPolicy()
	}
	return Estimate{
		Policy:              policy.Name(),
		TotalPrice:          TotalPriceEstimate(s, policy),
		ProcessingFee:       policy.ContentProcessingFee(s),
		Multiplier:          ComplexityMultiplier(s.BookType),
		EstimatedWords:      EstimatedWordCount(s),
		RecommendedChapters: RecommendedChapters(s),
		ContentDuration:     ContentDurationLabel(s),
	}
}
