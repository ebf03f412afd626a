package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podbook/internal/domain/entity"
)

func TestCanAdvanceBookTypeGate(t *testing.T) {
	s := NewState()
	assert.False(t, CanAdvance(s))

	for _, bt := range entity.SelectableBookTypes {
		t.Run(string(bt), func(t *testing.T) {
			s := NewState()
			require.NoError(t, s.SetBookType(string(bt)))
			assert.True(t, CanAdvance(s))
		})
	}
}

func TestCanAdvanceDetailsGate(t *testing.T) {
	tests := []struct {
		name    string
		details entity.BookDetails
		want    bool
	}{
		{name: "empty", want: false},
		{name: "title only", details: entity.BookDetails{Title: "T"}, want: false},
		{name: "description only", details: entity.BookDetails{Description: "D"}, want: false},
		{name: "whitespace title", details: entity.BookDetails{Title: "  ", Description: "D"}, want: false},
		{name: "both", details: entity.BookDetails{Title: "T", Description: "D"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.CurrentStep = StepDetails
			s.SetDetails(tt.details)
			assert.Equal(t, tt.want, CanAdvance(s))
		})
	}
}

func TestLaterStepsAlwaysAdvance(t *testing.T) {
	s := NewState()
	for _, step := range []int{StepSpecifications, StepContent} {
		s.CurrentStep = step
		assert.True(t, CanAdvance(s))
	}
}

func TestStepStatuses(t *testing.T) {
	s := NewState()
	statuses := StepStatuses(s)
	require.Len(t, statuses, TotalSteps)

	assert.Equal(t, "book-type", statuses[0].ID)
	assert.False(t, statuses[0].Complete)
	assert.True(t, statuses[0].Current)
	assert.False(t, statuses[1].Complete)
	assert.True(t, statuses[2].Complete)
	assert.True(t, statuses[3].Complete)

	require.NoError(t, s.SetBookType("fiction"))
	assert.True(t, StepStatuses(s)[0].Complete)
}

func TestShouldFinalize(t *testing.T) {
	s := NewState()
	s.CurrentStep = StepContent
	assert.False(t, ShouldFinalize(s))

	s.SetEpisodes(sampleEpisodes(1))
	require.NoError(t, s.ToggleEpisode(0))
	assert.True(t, ShouldFinalize(s))

	s.DeselectAllEpisodes()
	s.AppendUploadedFile(FileMetadata{Name: "a.mp3"})
	assert.True(t, ShouldFinalize(s))

	s.CurrentStep = StepSpecifications
	assert.False(t, ShouldFinalize(s))
}

func TestStepBounds(t *testing.T) {
	assert.Equal(t, 2, nextStep(1))
	assert.Equal(t, TotalSteps, nextStep(TotalSteps))
	assert.Equal(t, 1, prevStep(1))
	assert.Equal(t, 3, prevStep(4))
}
