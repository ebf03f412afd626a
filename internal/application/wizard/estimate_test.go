package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podbook/internal/domain/entity"
)

func TestTotalPriceEstimateFlatBusiness(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetBookType("business"))
	s.SetSpecs(entity.BookSpecs{TargetPages: 150, TargetChapters: 12, Format: entity.BookFormatPDF})

	// 150*2.5*1.1 + 25 = 437.5，四舍五入为 438
	assert.Equal(t, 438, TotalPriceEstimate(s, DefaultFlatPolicy()))
}

func TestTotalPriceEstimate(t *testing.T) {
	tests := []struct {
		name     string
		bookType entity.BookType
		pages    int
		policy   PricingPolicy
		files    []float64
		want     int
	}{
		{name: "no type", pages: 200, policy: DefaultFlatPolicy(), want: 525},
		{name: "creative", bookType: entity.BookTypeCreative, pages: 100, policy: DefaultFlatPolicy(), want: 250},
		{name: "technical", bookType: entity.BookTypeTechnical, pages: 100, policy: DefaultFlatPolicy(), want: 350},
		{name: "academic", bookType: entity.BookTypeAcademic, pages: 100, policy: DefaultFlatPolicy(), want: 350},
		{name: "duration no files", bookType: entity.BookTypeFiction, pages: 200, policy: DefaultDurationPolicy(), want: 500},
		{name: "duration rounds hours", bookType: entity.BookTypeFiction, pages: 200, policy: DefaultDurationPolicy(), files: []float64{2700, 2700}, want: 510},
		{name: "duration below half hour", bookType: entity.BookTypeFiction, pages: 200, policy: DefaultDurationPolicy(), files: []float64{1700}, want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.BookType = tt.bookType
			s.Specs.TargetPages = tt.pages
			for i, d := range tt.files {
				s.AppendUploadedFile(FileMetadata{Name: strings.Repeat("f", i+1), DurationSeconds: d})
			}
			assert.Equal(t, tt.want, TotalPriceEstimate(s, tt.policy))
		})
	}
}

func TestTotalPriceMonotonicInPages(t *testing.T) {
	types := append([]entity.BookType{"", entity.BookTypeTechnical}, entity.SelectableBookTypes...)
	policies := []PricingPolicy{DefaultFlatPolicy(), DefaultDurationPolicy()}

	for _, bt := range types {
		for _, policy := range policies {
			s := NewState()
			s.BookType = bt
			s.AppendUploadedFile(FileMetadata{Name: "a", DurationSeconds: 4000})

			prev := -1
			for pages := entity.MinTargetPages; pages <= entity.MaxTargetPages; pages++ {
				s.Specs.TargetPages = pages
				price := TotalPriceEstimate(s, policy)
				require.Greater(t, price, prev, "type=%s policy=%s pages=%d", bt, policy.Name(), pages)
				prev = price
			}
		}
	}
}

func TestRecommendedChapters(t *testing.T) {
	t.Run("falls back to target chapters", func(t *testing.T) {
		s := NewState()
		s.Specs.TargetChapters = 17
		assert.Equal(t, 17, RecommendedChapters(s))
	})

	t.Run("from text", func(t *testing.T) {
		s := NewState()
		s.SetTextContent(strings.Repeat("word ", 9000))
		// (ceil(9000/4500)=2 + 12 + 0) / 3 = 4.67
		assert.Equal(t, 5, RecommendedChapters(s))
	})

	t.Run("from media", func(t *testing.T) {
		s := NewState()
		s.AppendUploadedFile(FileMetadata{Name: "a.mp3", DurationSeconds: 600})
		assert.Equal(t, 1500, EstimatedWordCount(s))
		// (1 + 12 + 1) / 3 = 4.67
		assert.Equal(t, 5, RecommendedChapters(s))
	})

	t.Run("rounds half up", func(t *testing.T) {
		s := NewState()
		s.Specs.TargetChapters = 3
		s.SetTextContent("one")
		// (1 + 3 + 0) / 3 = 1.33
		assert.Equal(t, 1, RecommendedChapters(s))
		s.AppendUploadedFile(FileMetadata{Name: "doc.pdf"})
		s.AppendUploadedFile(FileMetadata{Name: "doc2.pdf"})
		// (1 + 3 + 2) / 3 = 2
		assert.Equal(t, 2, RecommendedChapters(s))
	})
}

func TestContentDurationLabel(t *testing.T) {
	tests := []struct {
		seconds []float64
		want    string
	}{
		{seconds: nil, want: "0 min"},
		{seconds: []float64{1500}, want: "25 min"},
		{seconds: []float64{1800, 1800}, want: "1:00"},
		{seconds: []float64{5430}, want: "1:31"},
		{seconds: []float64{3600 * 10, 300}, want: "10:05"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := NewState()
			for _, d := range tt.seconds {
				s.AppendUploadedFile(FileMetadata{Name: "f", DurationSeconds: d})
			}
			assert.Equal(t, tt.want, ContentDurationLabel(s))
		})
	}
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "flat", p.Name())

	p, err = PolicyByName("Duration")
	require.NoError(t, err)
	assert.Equal(t, "duration", p.Name())

	_, err = PolicyByName("tiered")
	assert.Error(t, err)
}

func TestComputeEstimate(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetBookType("creative"))
	s.AppendUploadedFile(FileMetadata{Name: "a.mp3", DurationSeconds: 7200})

	est := ComputeEstimate(s, DefaultDurationPolicy())
	assert.Equal(t, "duration", est.Policy)
	assert.Equal(t, 10.0, est.ProcessingFee)
	assert.Equal(t, 0.9, est.Multiplier)
	assert.Equal(t, 460, est.TotalPrice)
	assert.Equal(t, "2:00", est.ContentDuration)
	assert.Equal(t, 18000, est.EstimatedWords)
}
