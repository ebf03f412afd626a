package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bep/debounce"
	"golang.org/x/sync/singleflight"

	"podbook/pkg/logger"
	"podbook/pkg/metrics"
)

// DefaultAutosaveDelay 自动保存防抖时长
const DefaultAutosaveDelay = 600 * time.Millisecond

// ErrNoProjectID 保存未能获得项目 ID
var ErrNoProjectID = errors.New("wizard: no project id available")

const (
	triggerDebounce = "debounce"
	triggerForced   = "forced"
)

// snapshotSource 自动保存读取与回写状态的入口
type snapshotSource interface {
	// snapshot 返回当前保存载荷与状态版本号
	snapshot() (SavePayload, uint64)
	adoptProjectID(id string)
	projectID() string
}

// Autosaver 防抖自动保存
//
// 同一时间最多一个保存请求在途；保存开始前才读取状态快照，
// 因此排队等待的保存总是发送最新状态。
type Autosaver struct {
	store     ProjectStore
	src       snapshotSource
	debounced func(f func())
	ctx       context.Context

	mu     sync.Mutex
	closed bool

	flight   sync.Mutex
	saved    bool
	savedRev uint64

	ensure singleflight.Group
}

func newAutosaver(ctx context.Context, store ProjectStore, src snapshotSource, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{
		store:     store,
		src:       src,
		debounced: debounce.New(delay),
		// 在途请求不随向导关闭而取消
		ctx: context.WithoutCancel(ctx),
	}
}

// Notify 记录一次状态变化，重新开始防抖计时
func (a *Autosaver) Notify() {
	if a.isClosed() {
		return
	}
	a.debounced(a.fire)
}

func (a *Autosaver) fire() {
	if a.isClosed() {
		return
	}
	// 失败只记录，下一次防抖周期会带着最新状态重试
	_, _ = a.save(a.ctx, triggerDebounce)
}

// SaveNow 立即保存，跳过防抖
func (a *Autosaver) SaveNow(ctx context.Context) (string, error) {
	return a.save(ctx, triggerForced)
}

// Flush 存在未保存的变化或尚无项目 ID 时立即保存，返回项目 ID
func (a *Autosaver) Flush(ctx context.Context) (string, error) {
	a.flight.Lock()
	_, rev := a.src.snapshot()
	id := a.src.projectID()
	upToDate := a.saved && a.savedRev == rev && id != ""
	a.flight.Unlock()

	if upToDate {
		return id, nil
	}
	return a.save(ctx, triggerForced)
}

// EnsureProject 确保项目已持久化，并发调用合并为一次保存
func (a *Autosaver) EnsureProject(ctx context.Context) (string, error) {
	if id := a.src.projectID(); id != "" {
		return id, nil
	}

	v, err, _ := a.ensure.Do("ensure", func() (any, error) {
		if id := a.src.projectID(); id != "" {
			return id, nil
		}
		return a.save(ctx, triggerForced)
	})
	if err != nil {
		return "", err
	}
	id, _ := v.(string)
	if id == "" {
		return "", ErrNoProjectID
	}
	return id, nil
}

// Close 停止自动保存；此后计时器触发也不会再保存
func (a *Autosaver) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
}

func (a *Autosaver) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func (a *Autosaver) save(ctx context.Context, trigger string) (string, error) {
	a.flight.Lock()
	defer a.flight.Unlock()

	payload, rev := a.src.snapshot()
	if trigger == triggerDebounce && a.saved && a.savedRev == rev && payload.ID != "" {
		metrics.AutosaveTotal.WithLabelValues(trigger, "skipped").Inc()
		return payload.ID, nil
	}

	start := time.Now()
	id, err := a.store.SaveProject(ctx, &payload)
	metrics.AutosaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AutosaveTotal.WithLabelValues(trigger, "error").Inc()
		logger.Warn(ctx, "autosave failed", "trigger", trigger, "step", payload.Step, "error", err.Error())
		return "", err
	}

	metrics.AutosaveTotal.WithLabelValues(trigger, "ok").Inc()
	a.saved = true
	a.savedRev = rev
	a.src.adoptProjectID(id)

	resolved := a.src.projectID()
	logger.Debug(ctx, "autosave completed", "trigger", trigger, "project_id", resolved, "step", payload.Step)
	return resolved, nil
}
