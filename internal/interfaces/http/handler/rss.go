package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podbook/internal/domain/entity"
	"podbook/internal/infrastructure/rss"
	"podbook/internal/interfaces/http/dto"
	apperrors "podbook/pkg/errors"
)

// EpisodeLookup 订阅源单集查询
type EpisodeLookup interface {
	Episodes(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error)
}

// RSSHandler 订阅源解析处理器
type RSSHandler struct {
	lookup EpisodeLookup
}

// NewRSSHandler 创建订阅源处理器
func NewRSSHandler(lookup EpisodeLookup) *RSSHandler {
	return &RSSHandler{lookup: lookup}
}

// Episodes 解析订阅源单集
// @Summary 解析 RSS 订阅源
// @Tags RSS
// @Produce json
// @Param url query string true "订阅源地址"
// @Success 200 {object} dto.Response[dto.EpisodesResponse]
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/rss/episodes [get]
func (h *RSSHandler) Episodes(c *gin.Context) {
	feedURL := c.Query("url")
	if feedURL == "" {
		dto.FromError(c, apperrors.ErrInvalidParam.WithDetail("url is required"))
		return
	}

	episodes, err := h.lookup.Episodes(c.Request.Context(), feedURL)
	if err != nil {
		dto.FromError(c, feedError(err))
		return
	}
	if episodes == nil {
		episodes = []entity.RSSEpisode{}
	}
	dto.Success(c, &dto.EpisodesResponse{Episodes: episodes})
}

func feedError(err error) error {
	if errors.Is(err, rss.ErrInvalidFeedURL) {
		return apperrors.ErrInvalidParam.WithDetail(err.Error())
	}
	var statusErr *rss.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusGone {
			return apperrors.ErrFeedNotFound.WithError(err)
		}
		return apperrors.ErrUpstream.WithDetail(statusErr.Error())
	}
	if errors.Is(err, rss.ErrMalformedFeed) {
		return apperrors.ErrFeedParseFailed.WithError(err)
	}
	return apperrors.ErrUpstream.WithError(err)
}
