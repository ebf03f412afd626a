package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadController(t *testing.T, store *fakeStore, creds *fakeCreds, uploader *fakeUploader, prober *fakeProber, opts ...Option) *Controller {
	t.Helper()
	var dp DurationProber
	if prober != nil {
		dp = prober
	}
	base := []Option{
		WithAutosaveDelay(time.Hour),
		WithUploads(creds, uploader, dp),
		WithIdentity(Identity{Email: "author@example.com", LanguageCode: "en-US", ContentType: "podcast"}),
	}
	c := New(context.Background(), store, &fakeNavigator{}, append(base, opts...)...)
	t.Cleanup(c.Close)
	return c
}

func TestUploadStateMachine(t *testing.T) {
	store := newFakeStore("p1")
	creds := &fakeCreds{}
	uploader := &fakeUploader{failFor: map[string]bool{"broken.mp3": true}}
	prober := &fakeProber{durations: map[string]float64{"/tmp/talk.mp3": 1800}}
	c := newUploadController(t, store, creds, uploader, prober)

	summary, err := c.Upload(context.Background(),
		fakeFile{name: "talk.mp3", mimeType: "audio/mpeg", size: 4096},
		fakeFile{name: "broken.mp3", mimeType: "audio/mpeg", size: 100},
	)
	require.NoError(t, err)
	assert.Equal(t, UploadSummary{Completed: 1, Failed: 1}, summary)

	state := c.State()
	require.Len(t, state.Content.UploadedFiles, 1)
	got := state.Content.UploadedFiles[0]
	assert.Equal(t, "talk.mp3", got.Name)
	assert.Equal(t, int64(4096), got.SizeBytes)
	assert.Equal(t, "pkg-talk.mp3", got.UploadPackageID)
	assert.Equal(t, 1800.0, got.DurationSeconds)
	assert.Equal(t, "p1", got.ProjectID)

	uploads := c.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "broken.mp3", uploads[0].Name)
	assert.Equal(t, UploadError, uploads[0].Status)
	assert.Contains(t, uploads[0].Error, "connection reset")

	// 再次运行不会重复处理已结束的文件
	summary, err = c.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, UploadSummary{}, summary)
	assert.Len(t, c.State().Content.UploadedFiles, 1)

	assert.True(t, c.DismissUpload(uploads[0].ID))
	assert.Empty(t, c.Uploads())
}

func TestUploadRequestsCredentialsWithIdentity(t *testing.T) {
	store := newFakeStore("p1")
	creds := &fakeCreds{}
	c := newUploadController(t, store, creds, &fakeUploader{}, &fakeProber{})

	_, err := c.Upload(context.Background(), fakeFile{name: "notes.pdf", mimeType: "application/pdf"})
	require.NoError(t, err)

	require.Len(t, creds.requests, 1)
	assert.Equal(t, CredentialRequest{
		UserEmail:        "author@example.com",
		OriginalFilename: "notes.pdf",
		ProjectID:        "p1",
		LanguageCode:     "en-US",
		ContentType:      "podcast",
	}, creds.requests[0])

	// 上传前先确保项目存在
	assert.Equal(t, 1, store.saveCount())
}

func TestUploadProbesOnlyMedia(t *testing.T) {
	prober := &fakeProber{durations: map[string]float64{"/tmp/clip.mp4": 90}}
	c := newUploadController(t, newFakeStore("p1"), &fakeCreds{}, &fakeUploader{}, prober)

	_, err := c.Upload(context.Background(),
		fakeFile{name: "clip.mp4", mimeType: "video/mp4"},
		fakeFile{name: "notes.txt", mimeType: "text/plain; charset=utf-8"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"/tmp/clip.mp4"}, prober.calls)
	files := c.State().Content.UploadedFiles
	require.Len(t, files, 2)
	assert.Equal(t, 90.0, files[0].DurationSeconds)
	assert.Zero(t, files[1].DurationSeconds)
}

func TestUploadProbeErrorYieldsZero(t *testing.T) {
	prober := &fakeProber{err: errors.New("invalid data found when processing input")}
	c := newUploadController(t, newFakeStore("p1"), &fakeCreds{}, &fakeUploader{}, prober)

	summary, err := c.Upload(context.Background(), fakeFile{name: "bad.mp3", mimeType: "audio/mpeg"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)
	assert.Zero(t, c.State().Content.UploadedFiles[0].DurationSeconds)
}

func TestUploadCredentialFailure(t *testing.T) {
	creds := &fakeCreds{failFor: map[string]bool{"a.mp3": true}}
	uploader := &fakeUploader{}
	c := newUploadController(t, newFakeStore("p1"), creds, uploader, nil)

	summary, err := c.Upload(context.Background(),
		fakeFile{name: "a.mp3", mimeType: "audio/mpeg"},
		fakeFile{name: "b.mp3", mimeType: "audio/mpeg"},
	)
	require.NoError(t, err)
	assert.Equal(t, UploadSummary{Completed: 1, Failed: 1}, summary)
	assert.Equal(t, []string{"b.mp3"}, uploader.order)

	uploads := c.Uploads()
	require.Len(t, uploads, 1)
	assert.Contains(t, uploads[0].Error, "request upload credentials")
}

func TestUploadFailsWithoutProject(t *testing.T) {
	store := newFakeStore()
	store.setSaveErr(errors.New("persistence down"))
	c := newUploadController(t, store, &fakeCreds{}, &fakeUploader{}, nil)

	summary, err := c.Upload(context.Background(), fakeFile{name: "a.mp3", mimeType: "audio/mpeg"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, c.State().Content.UploadedFiles)
	assert.Contains(t, c.Uploads()[0].Error, "ensure project")
}

func TestUploadsSequentialByDefault(t *testing.T) {
	uploader := &fakeUploader{delay: 5 * time.Millisecond}
	c := newUploadController(t, newFakeStore("p1"), &fakeCreds{}, uploader, nil)

	names := []string{"1.mp3", "2.mp3", "3.mp3", "4.mp3"}
	var files []FileHandle
	for _, n := range names {
		files = append(files, fakeFile{name: n, mimeType: "audio/mpeg"})
	}
	_, err := c.Upload(context.Background(), files...)
	require.NoError(t, err)

	assert.Equal(t, names, uploader.order)
	assert.Equal(t, 1, uploader.maxInflight)

	var got []string
	for _, f := range c.State().Content.UploadedFiles {
		got = append(got, f.Name)
	}
	assert.Equal(t, names, got)
}

func TestOverlappingUploadsStaySequential(t *testing.T) {
	uploader := &fakeUploader{delay: 50 * time.Millisecond}
	c := newUploadController(t, newFakeStore("p1"), &fakeCreds{}, uploader, nil)

	var (
		wg    sync.WaitGroup
		first UploadSummary
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		first, err = c.Upload(context.Background(), fakeFile{name: "a.mp3", mimeType: "audio/mpeg"})
		assert.NoError(t, err)
	}()
	time.Sleep(5 * time.Millisecond)

	second, err := c.Upload(context.Background(), fakeFile{name: "b.mp3", mimeType: "audio/mpeg"})
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, 1, uploader.maxInflight)
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, uploader.order)
	assert.Equal(t, 2, first.Completed+second.Completed)
	assert.Zero(t, first.Failed+second.Failed)
	assert.Len(t, c.State().Content.UploadedFiles, 2)
}

func TestRunSkipsFilesAlreadyStarted(t *testing.T) {
	c := newUploadController(t, newFakeStore("p1"), &fakeCreds{}, &fakeUploader{}, nil)
	ids := c.registrar.Enqueue(fakeFile{name: "a.mp3", mimeType: "audio/mpeg"})
	require.Len(t, ids, 1)

	c.registrar.mu.Lock()
	started := c.registrar.files[0]
	c.registrar.mu.Unlock()
	require.True(t, c.registrar.begin(started))

	assert.Equal(t, UploadStatus(""), c.registrar.process(context.Background(), started))
}

func TestUploadsBoundedPool(t *testing.T) {
	uploader := &fakeUploader{delay: 20 * time.Millisecond}
	c := newUploadController(t, newFakeStore("p1"), &fakeCreds{}, uploader, nil, WithUploadConcurrency(3))

	var files []FileHandle
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		files = append(files, fakeFile{name: n, mimeType: "audio/mpeg"})
	}
	summary, err := c.Upload(context.Background(), files...)
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Completed)
	assert.LessOrEqual(t, uploader.maxInflight, 3)
	assert.Len(t, c.State().Content.UploadedFiles, 6)
}

func TestUploadNotConfigured(t *testing.T) {
	c := New(context.Background(), newFakeStore("p1"), &fakeNavigator{}, WithAutosaveDelay(time.Hour))
	defer c.Close()

	_, err := c.Upload(context.Background(), fakeFile{name: "a.mp3"})
	assert.Error(t, err)
}

func TestIsMediaType(t *testing.T) {
	assert.True(t, IsMediaType("audio/mpeg"))
	assert.True(t, IsMediaType("video/mp4"))
	assert.False(t, IsMediaType("application/pdf"))
	assert.False(t, IsMediaType(""))
}
