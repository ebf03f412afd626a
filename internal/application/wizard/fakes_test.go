package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"podbook/internal/domain/entity"
)

type fakeStore struct {
	mu sync.Mutex

	ids     []string
	saveErr error
	delay   time.Duration

	saves       []SavePayload
	inflight    int
	maxInflight int

	registerErr   error
	episodeCalls  [][]entity.RSSEpisode
	fileCalls     [][]FileRegistration
	registeredFor []string
}

func newFakeStore(ids ...string) *fakeStore {
	return &fakeStore{ids: ids}
}

func (f *fakeStore) SaveProject(ctx context.Context, payload *SavePayload) (string, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	f.saves = append(f.saves, *payload)
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--

	if f.saveErr != nil {
		return "", f.saveErr
	}
	if len(f.ids) == 0 {
		return "", nil
	}
	id := f.ids[0]
	if len(f.ids) > 1 {
		f.ids = f.ids[1:]
	}
	return id, nil
}

func (f *fakeStore) RegisterEpisodes(ctx context.Context, projectID string, episodes []entity.RSSEpisode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodeCalls = append(f.episodeCalls, episodes)
	f.registeredFor = append(f.registeredFor, projectID)
	return f.registerErr
}

func (f *fakeStore) RegisterFiles(ctx context.Context, projectID string, files []FileRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileCalls = append(f.fileCalls, files)
	f.registeredFor = append(f.registeredFor, projectID)
	return f.registerErr
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeStore) savesCopy() []SavePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SavePayload(nil), f.saves...)
}

func (f *fakeStore) setSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

type fakeNavigator struct {
	mu     sync.Mutex
	routes []string
	err    error
}

func (n *fakeNavigator) Navigate(ctx context.Context, route string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
	return n.err
}

type fakeEpisodeSource struct {
	episodes []entity.RSSEpisode
	err      error
}

func (s fakeEpisodeSource) FetchEpisodes(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error) {
	return s.episodes, s.err
}

func sampleEpisodes(n int) []entity.RSSEpisode {
	out := make([]entity.RSSEpisode, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entity.RSSEpisode{
			ID:    fmt.Sprintf("ep-%d", i),
			Title: fmt.Sprintf("Episode %d", i),
		})
	}
	return out
}

type fakeFile struct {
	name     string
	mimeType string
	size     int64
	content  string
}

func (f fakeFile) Name() string       { return f.name }
func (f fakeFile) Size() int64        { return f.size }
func (f fakeFile) MimeType() string   { return f.mimeType }
func (f fakeFile) ModTime() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
func (f fakeFile) Path() string       { return "/tmp/" + f.name }
func (f fakeFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.content)), nil
}

type fakeCreds struct {
	mu       sync.Mutex
	requests []CredentialRequest
	failFor  map[string]bool
}

func (c *fakeCreds) CreatePackage(ctx context.Context, req CredentialRequest) (*UploadCredentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.failFor[req.OriginalFilename] {
		return nil, errors.New("credential service unavailable")
	}
	return &UploadCredentials{
		PackageGUID: "pkg-" + req.OriginalFilename,
		URL:         "https://storage.example.com",
		Key:         "uploads/" + req.OriginalFilename,
	}, nil
}

type fakeUploader struct {
	mu          sync.Mutex
	order       []string
	failFor     map[string]bool
	delay       time.Duration
	inflight    int
	maxInflight int
}

func (u *fakeUploader) Upload(ctx context.Context, creds *UploadCredentials, file FileHandle, progress ProgressFunc) error {
	u.mu.Lock()
	u.order = append(u.order, file.Name())
	u.inflight++
	if u.inflight > u.maxInflight {
		u.maxInflight = u.inflight
	}
	delay := u.delay
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.inflight--
		u.mu.Unlock()
	}()

	progress(10)
	if delay > 0 {
		time.Sleep(delay)
	}
	if u.failFor[file.Name()] {
		return errors.New("connection reset")
	}
	progress(60)
	progress(100)
	return nil
}

type fakeProber struct {
	mu        sync.Mutex
	durations map[string]float64
	err       error
	calls     []string
}

func (p *fakeProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, path)
	if p.err != nil {
		return 0, p.err
	}
	return p.durations[path], nil
}
