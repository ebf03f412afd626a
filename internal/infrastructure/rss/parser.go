package rss

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"podbook/internal/domain/entity"
)

// ErrMalformedFeed 订阅源不是可解析的 RSS 文档
var ErrMalformedFeed = errors.New("rss: malformed feed")

type feedDocument struct {
	Channel struct {
		Title string     `xml:"title"`
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
}

type feedItem struct {
	Title     string `xml:"title"`
	Link      string `xml:"link"`
	GUID      string `xml:"guid"`
	PubDate   string `xml:"pubDate"`
	Duration  string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd duration"`
	Enclosure struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

// Parse 解析 RSS 2.0 文档，maxEpisodes <= 0 表示不限制
func Parse(r io.Reader, maxEpisodes int) ([]entity.RSSEpisode, error) {
	var doc feedDocument
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = passthroughCharset
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	items := doc.Channel.Items
	if maxEpisodes > 0 && len(items) > maxEpisodes {
		items = items[:maxEpisodes]
	}

	episodes := make([]entity.RSSEpisode, 0, len(items))
	for i, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			link = strings.TrimSpace(item.Enclosure.URL)
		}
		id := strings.TrimSpace(item.GUID)
		if id == "" {
			id = link
		}
		if id == "" {
			id = strconv.Itoa(i)
		}

		episodes = append(episodes, entity.RSSEpisode{
			ID:            id,
			Title:         strings.TrimSpace(item.Title),
			Link:          link,
			PublishedAt:   normalizePubDate(item.PubDate),
			DurationLabel: DurationLabel(item.Duration),
		})
	}
	return episodes, nil
}

// 非 UTF-8 声明的订阅源按原字节读取
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
}

// normalizePubDate 可解析时统一为 RFC3339，否则保留原文
func normalizePubDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}

// DurationLabel 将 itunes:duration 统一为 H:MM:SS 或 M:SS
//
// 支持纯秒数、MM:SS 与 HH:MM:SS，无法识别时原样返回。
func DurationLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var total int
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return raw
	}
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			// 小数秒
			if len(parts) == 1 {
				if f, ferr := strconv.ParseFloat(p, 64); ferr == nil && f >= 0 {
					total = int(f)
					break
				}
			}
			return raw
		}
		total = total*60 + n
	}

	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
