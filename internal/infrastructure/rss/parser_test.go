package rss

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Build Notes</title>
    <item>
      <title> Episode 3: Shipping </title>
      <link>https://example.com/ep3</link>
      <guid>ep-3</guid>
      <pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate>
      <itunes:duration>3725</itunes:duration>
    </item>
    <item>
      <title>Episode 2</title>
      <enclosure url="https://cdn.example.com/ep2.mp3" type="audio/mpeg"/>
      <pubDate>not a date</pubDate>
      <itunes:duration>42:07</itunes:duration>
    </item>
    <item>
      <title>Episode 1</title>
    </item>
  </channel>
</rss>`

func TestParse(t *testing.T) {
	episodes, err := Parse(strings.NewReader(sampleFeed), 0)
	require.NoError(t, err)
	require.Len(t, episodes, 3)

	assert.Equal(t, "ep-3", episodes[0].ID)
	assert.Equal(t, "Episode 3: Shipping", episodes[0].Title)
	assert.Equal(t, "https://example.com/ep3", episodes[0].Link)
	assert.Equal(t, "2024-01-02T10:00:00Z", episodes[0].PublishedAt)
	assert.Equal(t, "1:02:05", episodes[0].DurationLabel)

	assert.Equal(t, "https://cdn.example.com/ep2.mp3", episodes[1].ID)
	assert.Equal(t, "https://cdn.example.com/ep2.mp3", episodes[1].Link)
	assert.Equal(t, "not a date", episodes[1].PublishedAt)
	assert.Equal(t, "42:07", episodes[1].DurationLabel)

	assert.Equal(t, "2", episodes[2].ID)
	assert.Empty(t, episodes[2].DurationLabel)
}

func TestParseCapsEpisodes(t *testing.T) {
	episodes, err := Parse(strings.NewReader(sampleFeed), 2)
	require.NoError(t, err)
	assert.Len(t, episodes, 2)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("{not xml"), 0)
	assert.ErrorIs(t, err, ErrMalformedFeed)
}

func TestDurationLabel(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"59":       "0:59",
		"3600":     "1:00:00",
		"90.7":     "1:30",
		"5:03":     "5:03",
		"01:02:03": "1:02:03",
		"75:00":    "1:15:00",
		"about 5m": "about 5m",
		"1:2:3:4":  "1:2:3:4",
	}
	for in, want := range tests {
		assert.Equal(t, want, DurationLabel(in), "input %q", in)
	}
}
