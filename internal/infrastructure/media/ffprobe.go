// Package media 提供基于 ffprobe 的媒体时长探测
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("media")

// ProbeResult ffprobe 输出中用到的部分
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

// ProbeStream 单个流
type ProbeStream struct {
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

// ProbeFormat 容器信息
type ProbeFormat struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// DurationSeconds 容器时长；容器未给出时取最长的流时长
func (r ProbeResult) DurationSeconds() float64 {
	if d := parseSeconds(r.Format.Duration); d > 0 {
		return d
	}
	var longest float64
	for _, s := range r.Streams {
		if d := parseSeconds(s.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

// HasAudioOrVideo 是否包含音视频流
func (r ProbeResult) HasAudioOrVideo() bool {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "audio") || strings.EqualFold(s.CodecType, "video") {
			return true
		}
	}
	return false
}

func parseSeconds(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Prober ffprobe 时长探测器
type Prober struct {
	binary  string
	timeout time.Duration
}

// NewProber 创建探测器；timeout 为 0 表示不限制
func NewProber(binary string, timeout time.Duration) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, timeout: timeout}
}

// Inspect 执行 ffprobe 并解析 JSON 输出
func (p *Prober) Inspect(ctx context.Context, path string) (ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, errors.New("ffprobe: empty path")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ProbeResult{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return ProbeResult{}, fmt.Errorf("ffprobe: %w", err)
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// ProbeDuration 探测媒体时长（秒）
func (p *Prober) ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctx, span := tracer.Start(ctx, "media.ProbeDuration",
		trace.WithAttributes(attribute.String("media.path", path)))
	defer span.End()

	result, err := p.Inspect(ctx, path)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	d := result.DurationSeconds()
	span.SetAttributes(attribute.Float64("media.duration_seconds", d))
	return d, nil
}
