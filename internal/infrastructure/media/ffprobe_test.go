package media

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{
			name: "format duration",
			raw:  `{"format":{"duration":"1800.512000"},"streams":[{"codec_type":"audio","duration":"1700"}]}`,
			want: 1800.512,
		},
		{
			name: "falls back to longest stream",
			raw:  `{"format":{},"streams":[{"codec_type":"audio","duration":"12.5"},{"codec_type":"video","duration":"13.25"}]}`,
			want: 13.25,
		},
		{
			name: "unparseable",
			raw:  `{"format":{"duration":"N/A"},"streams":[]}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r ProbeResult
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &r))
			assert.InDelta(t, tt.want, r.DurationSeconds(), 1e-9)
		})
	}
}

func TestHasAudioOrVideo(t *testing.T) {
	assert.True(t, ProbeResult{Streams: []ProbeStream{{CodecType: "Audio"}}}.HasAudioOrVideo())
	assert.False(t, ProbeResult{Streams: []ProbeStream{{CodecType: "subtitle"}}}.HasAudioOrVideo())
}

func fakeFFprobe(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestProbeDuration(t *testing.T) {
	bin := fakeFFprobe(t, `echo '{"format":{"duration":"95.0"},"streams":[{"codec_type":"audio"}]}'`)
	p := NewProber(bin, time.Second)

	d, err := p.ProbeDuration(context.Background(), "/media/episode.mp3")
	require.NoError(t, err)
	assert.Equal(t, 95.0, d)
}

func TestProbeDurationFailure(t *testing.T) {
	bin := fakeFFprobe(t, `echo "Invalid data found when processing input" >&2; exit 1`)
	p := NewProber(bin, 0)

	_, err := p.ProbeDuration(context.Background(), "/media/notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestProbeEmptyPath(t *testing.T) {
	_, err := NewProber("", 0).ProbeDuration(context.Background(), " ")
	assert.Error(t, err)
}
