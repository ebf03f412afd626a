package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"podbook/internal/domain/entity"
)

// DefaultSavedIndicator “已保存”提示的显示时长
const DefaultSavedIndicator = 3 * time.Second

// DefaultProjectRoute 完成后跳转的项目详情路由
const DefaultProjectRoute = "/projects/%s"

// errUnchanged 状态未发生变化，不产生变化事件
var errUnchanged = errors.New("wizard: unchanged")

// Option 控制器选项
type Option func(*Controller)

// WithAutosaveDelay 设置自动保存防抖时长
func WithAutosaveDelay(d time.Duration) Option {
	return func(c *Controller) { c.autosaveDelay = d }
}

// WithSavedIndicator 设置“已保存”提示时长
func WithSavedIndicator(d time.Duration) Option {
	return func(c *Controller) { c.savedIndicator = d }
}

// WithEpisodeSource 设置订阅源解析服务
func WithEpisodeSource(src EpisodeSource) Option {
	return func(c *Controller) { c.episodes = src }
}

// WithUploads 设置上传所需的凭证、传输与时长探测
func WithUploads(creds CredentialIssuer, uploader ObjectUploader, prober DurationProber) Option {
	return func(c *Controller) {
		c.registrar.creds = creds
		c.registrar.uploader = uploader
		c.registrar.prober = prober
	}
}

// WithIdentity 设置上传凭证请求使用的会话身份
func WithIdentity(id Identity) Option {
	return func(c *Controller) { c.registrar.identity = id }
}

// WithUploadConcurrency 设置同时上传的文件数，默认 1（顺序上传）
func WithUploadConcurrency(n int) Option {
	return func(c *Controller) { c.registrar.concurrency = n }
}

// WithProjectRoute 设置项目详情路由模板，%s 为项目 ID
func WithProjectRoute(tmpl string) Option {
	return func(c *Controller) {
		if tmpl != "" {
			c.projectRoute = tmpl
		}
	}
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller 向导控制器，独占 State 并串行化所有修改
type Controller struct {
	store     ProjectStore
	navigator Navigator
	episodes  EpisodeSource

	autosaveDelay  time.Duration
	savedIndicator time.Duration
	projectRoute   string
	now            func() time.Time

	mu        sync.Mutex
	state     *State
	rev       uint64
	enteredAt time.Time

	autosave  *Autosaver
	registrar *Registrar
}

// New 创建向导控制器
func New(ctx context.Context, store ProjectStore, navigator Navigator, opts ...Option) *Controller {
	c := &Controller{
		store:          store,
		navigator:      navigator,
		autosaveDelay:  DefaultAutosaveDelay,
		savedIndicator: DefaultSavedIndicator,
		projectRoute:   DefaultProjectRoute,
		now:            time.Now,
		state:          NewState(),
		registrar:      &Registrar{concurrency: 1},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.autosave = newAutosaver(ctx, store, c, c.autosaveDelay)
	c.registrar.ensureProject = c.autosave.EnsureProject
	c.registrar.onComplete = c.appendUploadedFile
	return c
}

// snapshot 实现 snapshotSource
func (c *Controller) snapshot() (SavePayload, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Payload(), c.rev
}

func (c *Controller) adoptProjectID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.AdoptProjectID(id)
}

func (c *Controller) projectID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ProjectID
}

// mutate 在锁内修改状态，成功后发出一次变化事件
func (c *Controller) mutate(fn func(s *State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c.state); err != nil {
		return err
	}
	c.rev++
	c.autosave.Notify()
	return nil
}

// State 当前状态副本
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// ProjectID 已采用的项目 ID
func (c *Controller) ProjectID() string {
	return c.projectID()
}

// Autosaver 自动保存管线
func (c *Controller) Autosaver() *Autosaver {
	return c.autosave
}

// SelectBookType 选择书籍类型
func (c *Controller) SelectBookType(t string) error {
	return c.mutate(func(s *State) error { return s.SetBookType(t) })
}

// SetDetails 更新书籍信息
func (c *Controller) SetDetails(d entity.BookDetails) {
	_ = c.mutate(func(s *State) error {
		s.SetDetails(d)
		return nil
	})
}

// SetSpecs 更新书籍规格
func (c *Controller) SetSpecs(specs entity.BookSpecs) {
	_ = c.mutate(func(s *State) error {
		s.SetSpecs(specs)
		return nil
	})
}

// SetFeedURL 设置订阅源地址
func (c *Controller) SetFeedURL(feedURL string) {
	_ = c.mutate(func(s *State) error {
		s.SetFeedURL(feedURL)
		return nil
	})
}

// ValidateFeed 设置订阅源并拉取单集列表，原有选择被清空
func (c *Controller) ValidateFeed(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error) {
	if c.episodes == nil {
		return nil, fmt.Errorf("wizard: no episode source configured")
	}
	c.SetFeedURL(feedURL)

	episodes, err := c.episodes.FetchEpisodes(ctx, c.State().Content.RSSFeedURL)
	if err != nil {
		return nil, err
	}

	_ = c.mutate(func(s *State) error {
		s.SetEpisodes(episodes)
		return nil
	})
	return episodes, nil
}

// ToggleEpisode 切换单集选择
func (c *Controller) ToggleEpisode(i int) error {
	return c.mutate(func(s *State) error { return s.ToggleEpisode(i) })
}

// SelectAllEpisodes 全选单集
func (c *Controller) SelectAllEpisodes() {
	_ = c.mutate(func(s *State) error {
		s.SelectAllEpisodes()
		return nil
	})
}

// DeselectAllEpisodes 取消全部选择
func (c *Controller) DeselectAllEpisodes() {
	_ = c.mutate(func(s *State) error {
		s.DeselectAllEpisodes()
		return nil
	})
}

// SetTextContent 设置自由文本
func (c *Controller) SetTextContent(text string) {
	_ = c.mutate(func(s *State) error {
		s.SetTextContent(text)
		return nil
	})
}

// AddURL 添加参考链接
func (c *Controller) AddURL(raw string) error {
	return c.mutate(func(s *State) error { return s.AddURL(raw) })
}

// RemoveURL 移除参考链接
func (c *Controller) RemoveURL(raw string) bool {
	var removed bool
	_ = c.mutate(func(s *State) error {
		removed = s.RemoveURL(raw)
		return nil
	})
	return removed
}

// RemoveUploadedFile 移除已上传文件
func (c *Controller) RemoveUploadedFile(name string) bool {
	var removed bool
	_ = c.mutate(func(s *State) error {
		removed = s.RemoveUploadedFile(name)
		return nil
	})
	return removed
}

func (c *Controller) appendUploadedFile(f FileMetadata) {
	_ = c.mutate(func(s *State) error {
		s.AppendUploadedFile(f)
		return nil
	})
}

// Steps 各步骤完成情况
func (c *Controller) Steps() []StepStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StepStatuses(c.state)
}

// CanAdvance 当前步骤是否允许前进
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CanAdvance(c.state)
}

// AdvanceResult 前进操作的结果
type AdvanceResult struct {
	Step      int
	Moved     bool
	Finalized bool
	Route     string
}

// Advance 前进一步；在内容步骤且已有选择时执行完成流程
func (c *Controller) Advance(ctx context.Context) (AdvanceResult, error) {
	c.mu.Lock()
	if !CanAdvance(c.state) {
		step := c.state.CurrentStep
		c.mu.Unlock()
		return AdvanceResult{Step: step}, nil
	}
	if ShouldFinalize(c.state) {
		c.mu.Unlock()
		return c.finalize(ctx)
	}
	c.mu.Unlock()

	var res AdvanceResult
	err := c.mutate(func(s *State) error {
		res.Step = s.CurrentStep
		next := nextStep(s.CurrentStep)
		if next == s.CurrentStep || !CanAdvance(s) {
			return errUnchanged
		}
		s.CurrentStep = next
		res.Step = next
		res.Moved = true
		c.enteredAt = c.now()
		return nil
	})
	if err != nil && err != errUnchanged {
		return res, err
	}
	return res, nil
}

// Retreat 后退一步
func (c *Controller) Retreat() int {
	var step int
	_ = c.mutate(func(s *State) error {
		step = s.CurrentStep
		prev := prevStep(s.CurrentStep)
		if prev == s.CurrentStep {
			return errUnchanged
		}
		if prev > 1 {
			c.enteredAt = c.now()
		}
		s.CurrentStep = prev
		step = prev
		return nil
	})
	return step
}

// SavedIndicatorVisible 进入第 2 步及以后的一段时间内显示“已保存”提示
//
// 仅用于展示，与保存是否完成无关。
func (c *Controller) SavedIndicatorVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enteredAt.IsZero() || c.state.CurrentStep <= 1 {
		return false
	}
	return c.now().Sub(c.enteredAt) < c.savedIndicator
}

// Estimate 按指定策略估算
func (c *Controller) Estimate(policy PricingPolicy) Estimate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeEstimate(c.state, policy)
}

// Upload 加入文件并执行上传
func (c *Controller) Upload(ctx context.Context, files ...FileHandle) (UploadSummary, error) {
	if c.registrar.creds == nil || c.registrar.uploader == nil {
		return UploadSummary{}, fmt.Errorf("wizard: uploads are not configured")
	}
	c.registrar.Enqueue(files...)
	return c.registrar.Run(ctx)
}

// Uploads 临时上传列表
func (c *Controller) Uploads() []UploadingFile {
	return c.registrar.Files()
}

// DismissUpload 移除已结束的临时上传条目
func (c *Controller) DismissUpload(id string) bool {
	return c.registrar.Dismiss(id)
}

// Close 关闭向导，停止后续的防抖保存；在途请求不受影响
func (c *Controller) Close() {
	c.autosave.Close()
}
