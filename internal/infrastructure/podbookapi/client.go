// Package podbookapi 项目持久化服务与订阅源解析服务的 HTTP 客户端
package podbookapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"podbook/internal/application/wizard"
	"podbook/internal/config"
	"podbook/internal/domain/entity"
)

var tracer = otel.Tracer("podbookapi")

// ErrMissingProjectID 保存响应中没有项目 ID
var ErrMissingProjectID = errors.New("podbookapi: response carries no project id")

// APIError 服务端返回非 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("podbookapi: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("podbookapi: HTTP %d", e.StatusCode)
}

// Client 服务客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient 创建客户端
func NewClient(cfg *config.PodbookClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// SaveProject 保存草稿，响应 ID 兼容 data.id 与顶层 id
func (c *Client) SaveProject(ctx context.Context, payload *wizard.SavePayload) (string, error) {
	ctx, span := tracer.Start(ctx, "podbookapi.SaveProject",
		trace.WithAttributes(attribute.Int("wizard.step", payload.Step)))
	defer span.End()

	raw, err := c.do(ctx, http.MethodPost, "/project/save", payload)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	id, err := projectIDFrom(raw)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.String("project.id", id))
	return id, nil
}

func projectIDFrom(raw []byte) (string, error) {
	var body struct {
		ID   json.RawMessage `json:"id"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("podbookapi: decode save response: %w", err)
	}
	// data 不是对象时忽略，继续看顶层 id
	var data struct {
		ID json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(body.Data, &data)

	for _, candidate := range []json.RawMessage{data.ID, body.ID} {
		if id := rawID(candidate); id != "" {
			return id, nil
		}
	}
	return "", ErrMissingProjectID
}

// rawID 接受字符串或数字形式的 ID
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

type registerEpisodesRequest struct {
	ProjectID string              `json:"projectId"`
	Episodes  []entity.RSSEpisode `json:"episodes"`
}

// RegisterEpisodes 登记已选单集
func (c *Client) RegisterEpisodes(ctx context.Context, projectID string, episodes []entity.RSSEpisode) error {
	ctx, span := tracer.Start(ctx, "podbookapi.RegisterEpisodes",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.Int("episode.count", len(episodes)),
		))
	defer span.End()

	_, err := c.do(ctx, http.MethodPost, "/uploads/rss", registerEpisodesRequest{ProjectID: projectID, Episodes: episodes})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

type registerFilesRequest struct {
	ProjectID string                    `json:"projectId"`
	Files     []wizard.FileRegistration `json:"files"`
}

// RegisterFiles 登记已上传文件
func (c *Client) RegisterFiles(ctx context.Context, projectID string, files []wizard.FileRegistration) error {
	ctx, span := tracer.Start(ctx, "podbookapi.RegisterFiles",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.Int("file.count", len(files)),
		))
	defer span.End()

	_, err := c.do(ctx, http.MethodPost, "/uploads/files", registerFilesRequest{ProjectID: projectID, Files: files})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// FetchEpisodes 通过服务端解析订阅源
func (c *Client) FetchEpisodes(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error) {
	ctx, span := tracer.Start(ctx, "podbookapi.FetchEpisodes",
		trace.WithAttributes(attribute.String("rss.url", feedURL)))
	defer span.End()

	raw, err := c.do(ctx, http.MethodGet, "/rss/episodes?url="+url.QueryEscape(feedURL), nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var body struct {
		Episodes []entity.RSSEpisode `json:"episodes"`
		Data     struct {
			Episodes []entity.RSSEpisode `json:"episodes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("podbookapi: decode episodes: %w", err)
	}
	if body.Data.Episodes != nil {
		return body.Data.Episodes, nil
	}
	return body.Episodes, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("podbookapi: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("podbookapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("podbookapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("podbookapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

func errorMessage(raw []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
