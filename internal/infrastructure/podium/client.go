// Package podium 上传凭证服务（GraphQL）客户端
package podium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"podbook/internal/application/wizard"
	"podbook/internal/config"
)

var tracer = otel.Tracer("podium")

const createPackageMutation = `mutation CreatePodiumPackage($userEmail: String!, $originalFilename: String!, $projectId: String!, $languageCode: String!, $contentType: String!) {
  createPodiumPackage(userEmail: $userEmail, originalFilename: $originalFilename, projectId: $projectId, languageCode: $languageCode, contentType: $contentType) {
    podiumPackageGuid
    url
    key
    AWSAccessKeyId
    policy
    signature
  }
}`

// GraphQLError GraphQL 响应中的错误项
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ResponseError 服务返回了 errors 数组
type ResponseError struct {
	Errors []GraphQLError
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "podium: " + strings.Join(msgs, "; ")
}

// Client GraphQL 客户端
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient 创建客户端
func NewClient(cfg *config.PodiumClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type createPackageResponse struct {
	Data *struct {
		CreatePodiumPackage *wizard.UploadCredentials `json:"createPodiumPackage"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// CreatePackage 申请预签名上传凭证
func (c *Client) CreatePackage(ctx context.Context, req wizard.CredentialRequest) (*wizard.UploadCredentials, error) {
	ctx, span := tracer.Start(ctx, "podium.CreatePackage",
		trace.WithAttributes(
			attribute.String("project.id", req.ProjectID),
			attribute.String("file.name", req.OriginalFilename),
		))
	defer span.End()

	if c.endpoint == "" {
		return nil, errors.New("podium: endpoint not configured")
	}

	body, err := json.Marshal(graphQLRequest{
		Query: createPackageMutation,
		Variables: map[string]any{
			"userEmail":        req.UserEmail,
			"originalFilename": req.OriginalFilename,
			"projectId":        req.ProjectID,
			"languageCode":     req.LanguageCode,
			"contentType":      req.ContentType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("podium: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("podium: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("podium: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("podium: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("podium: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		span.RecordError(err)
		return nil, err
	}

	var out createPackageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("podium: decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		err := &ResponseError{Errors: out.Errors}
		span.RecordError(err)
		return nil, err
	}
	if out.Data == nil || out.Data.CreatePodiumPackage == nil {
		return nil, errors.New("podium: empty createPodiumPackage result")
	}

	creds := out.Data.CreatePodiumPackage
	if creds.URL == "" {
		return nil, errors.New("podium: credentials missing upload url")
	}
	span.SetAttributes(attribute.String("podium.package_guid", creds.PackageGUID))
	return creds, nil
}
