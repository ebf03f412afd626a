package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podbook/internal/domain/entity"
)

func TestWizardEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("proj-42")
	nav := &fakeNavigator{}
	episodes := sampleEpisodes(5)
	c := New(ctx, store, nav,
		WithAutosaveDelay(time.Hour),
		WithEpisodeSource(fakeEpisodeSource{episodes: episodes}),
	)
	defer c.Close()

	require.NoError(t, c.SelectBookType("educational"))
	res, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Step)

	c.SetDetails(entity.BookDetails{Title: "My Guide", Description: "A guide"})
	res, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Step)

	c.SetSpecs(entity.BookSpecs{TargetPages: 200, TargetChapters: 12, Format: entity.BookFormatPDF})
	res, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Step)

	fetched, err := c.ValidateFeed(ctx, "https://example.com/feed.xml")
	require.NoError(t, err)
	require.Len(t, fetched, 5)
	require.NoError(t, c.ToggleEpisode(1))
	require.NoError(t, c.ToggleEpisode(3))

	res, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, res.Finalized)
	assert.Equal(t, "/projects/proj-42", res.Route)

	saves := store.savesCopy()
	require.Len(t, saves, 1)
	assert.Equal(t, 4, saves[0].Step)
	assert.Equal(t, entity.BookTypeEducational, saves[0].Type)
	assert.Equal(t, "My Guide", saves[0].Details.Title)
	assert.Equal(t, 200, saves[0].Specs.TargetPages)
	assert.Equal(t, []int{1, 3}, saves[0].Content.SelectedEpisodes)

	require.Len(t, store.episodeCalls, 1)
	assert.Equal(t, []entity.RSSEpisode{episodes[1], episodes[3]}, store.episodeCalls[0])
	assert.Equal(t, []string{"proj-42"}, store.registeredFor)
	assert.Empty(t, store.fileCalls)

	assert.Equal(t, []string{"/projects/proj-42"}, nav.routes)
}

func TestAdvanceBlockedByGate(t *testing.T) {
	c := New(context.Background(), newFakeStore("p1"), &fakeNavigator{}, WithAutosaveDelay(time.Hour))
	defer c.Close()

	res, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, 1, res.Step)
	assert.False(t, c.CanAdvance())
}

func TestAdvanceOnContentStepWithoutSelections(t *testing.T) {
	store := newFakeStore("p1")
	nav := &fakeNavigator{}
	c := New(context.Background(), store, nav, WithAutosaveDelay(time.Hour))
	defer c.Close()

	require.NoError(t, c.SelectBookType("fiction"))
	c.SetDetails(entity.BookDetails{Title: "T", Description: "D"})
	for i := 0; i < 3; i++ {
		_, err := c.Advance(context.Background())
		require.NoError(t, err)
	}

	res, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.False(t, res.Finalized)
	assert.Equal(t, TotalSteps, c.State().CurrentStep)
	assert.Empty(t, nav.routes)
}

func TestRetreat(t *testing.T) {
	c := New(context.Background(), newFakeStore("p1"), &fakeNavigator{}, WithAutosaveDelay(time.Hour))
	defer c.Close()

	assert.Equal(t, 1, c.Retreat())

	require.NoError(t, c.SelectBookType("fiction"))
	_, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Retreat())
}

func TestSavedIndicator(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(context.Background(), newFakeStore("p1"), &fakeNavigator{},
		WithAutosaveDelay(time.Hour),
		WithClock(func() time.Time { return now }),
	)
	defer c.Close()

	assert.False(t, c.SavedIndicatorVisible())

	require.NoError(t, c.SelectBookType("fiction"))
	_, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.True(t, c.SavedIndicatorVisible())

	now = now.Add(2999 * time.Millisecond)
	assert.True(t, c.SavedIndicatorVisible())

	now = now.Add(time.Millisecond)
	assert.False(t, c.SavedIndicatorVisible())

	c.Retreat()
	assert.False(t, c.SavedIndicatorVisible(), "step 1 never shows the indicator")
}

func TestFinalizeWithoutProjectID(t *testing.T) {
	store := newFakeStore()
	store.setSaveErr(errors.New("persistence down"))
	nav := &fakeNavigator{}
	c := New(context.Background(), store, nav, WithAutosaveDelay(time.Hour))
	defer c.Close()

	c.appendUploadedFile(FileMetadata{Name: "a.mp3"})
	res, err := c.Finalize(context.Background())

	var ferr *FinalizationError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Error(), "persistence down")
	assert.False(t, res.Finalized)
	assert.Empty(t, nav.routes)
	assert.Empty(t, store.fileCalls)
}

func TestFinalizeNavigatesDespiteRegistrationFailure(t *testing.T) {
	store := newFakeStore("p7")
	store.registerErr = errors.New("registration failed")
	nav := &fakeNavigator{}
	c := New(context.Background(), store, nav, WithAutosaveDelay(time.Hour), WithProjectRoute("/app/projects/%s"))
	defer c.Close()

	c.appendUploadedFile(FileMetadata{Name: "a.mp3", UploadPackageID: "pkg-a", MimeType: "audio/mpeg", DurationSeconds: 42})
	res, err := c.Finalize(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Finalized)
	assert.Equal(t, []string{"/app/projects/p7"}, nav.routes)

	require.Len(t, store.fileCalls, 1)
	assert.Equal(t, []FileRegistration{{
		Filename:    "a.mp3",
		URL:         "pkg-a",
		Size:        42,
		ContentType: "audio/mpeg",
		Duration:    42,
	}}, store.fileCalls[0])
}

func TestFinalizeUsesKnownIDWhenFinalSaveFails(t *testing.T) {
	store := newFakeStore("p3")
	nav := &fakeNavigator{}
	c := New(context.Background(), store, nav, WithAutosaveDelay(time.Hour))
	defer c.Close()

	_, err := c.Autosaver().SaveNow(context.Background())
	require.NoError(t, err)

	store.setSaveErr(errors.New("timeout"))
	c.appendUploadedFile(FileMetadata{Name: "a.mp3"})

	res, err := c.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/projects/p3", res.Route)
}

func TestFinalizeNavigationError(t *testing.T) {
	nav := &fakeNavigator{err: errors.New("router gone")}
	c := New(context.Background(), newFakeStore("p1"), nav, WithAutosaveDelay(time.Hour))
	defer c.Close()

	c.appendUploadedFile(FileMetadata{Name: "a.mp3"})
	_, err := c.Finalize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "router gone")
}

func TestValidateFeedWithoutSource(t *testing.T) {
	c := New(context.Background(), newFakeStore("p1"), &fakeNavigator{}, WithAutosaveDelay(time.Hour))
	defer c.Close()

	_, err := c.ValidateFeed(context.Background(), "https://example.com/feed")
	assert.Error(t, err)
}

func TestValidateFeedError(t *testing.T) {
	src := fakeEpisodeSource{err: errors.New("feed not found")}
	c := New(context.Background(), newFakeStore("p1"), &fakeNavigator{},
		WithAutosaveDelay(time.Hour), WithEpisodeSource(src))
	defer c.Close()

	_, err := c.ValidateFeed(context.Background(), "https://example.com/feed")
	require.Error(t, err)
	assert.Equal(t, "https://example.com/feed", c.State().Content.RSSFeedURL)
	assert.Empty(t, c.State().Episodes)
}
