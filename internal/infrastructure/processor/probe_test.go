package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-stamp/internal/domain/entities"
	fe "media-stamp/pkg/errors"
)

const probeOutput = `{
  "streams": [{"index": 0, "codec_type": "video", "codec_name": "h264"}],
  "format": {
    "filename": "clip.mp4",
    "nb_streams": 2,
    "nb_programs": 0,
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "format_long_name": "QuickTime / MOV",
    "start_time": "0.000000",
    "duration": "12.345000",
    "size": "1048576",
    "bit_rate": "679477",
    "probe_score": 100,
    "tags": {
      "major_brand": "isom",
      "title": "Holiday",
      "encoder": "Lavf60.3.100",
      "format_name": "shadowed"
    }
  }
}`

func TestMergeTags(t *testing.T) {
	test := []struct {
		name   string
		format map[string]any
		want   entities.VideoTagSet
	}{
		{"structural_wins",
			map[string]any{
				"tags":        map[string]any{"title": "A"},
				"title":       "B",
				"format_name": "mp4",
			},
			entities.VideoTagSet{"title": "B", "format_name": "mp4"}},
		{"excluded_properties",
			map[string]any{
				"filename":    "x.mp4",
				"duration":    "1.0",
				"size":        "10",
				"bit_rate":    "100",
				"probe_score": json.Number("100"),
				"nb_streams":  json.Number("2"),
				"tags":        map[string]any{"artist": "Me"},
			},
			entities.VideoTagSet{"artist": "Me"}},
		{"numbers_verbatim",
			map[string]any{"custom_rate": json.Number("29.970")},
			entities.VideoTagSet{"custom_rate": "29.970"}},
		{"empty", map[string]any{}, entities.VideoTagSet{}},
		{"nil", nil, entities.VideoTagSet{}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeTags(tt.format))
		})
	}
}

func TestInspectorProbe(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			return CommandResult{Stdout: probeOutput}, nil
		},
	}

	tags, err := NewInspector("ffprobe-custom", runner, nil).Probe(context.Background(), "/media/clip.mp4")
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"ffprobe-custom", "-v", "error", "-print_format", "json", "-show_format", "-show_streams", "/media/clip.mp4",
	}, runner.calls[0])

	assert.Equal(t, entities.VideoTagSet{
		"major_brand": "isom",
		"title":       "Holiday",
		"encoder":     "Lavf60.3.100",
		"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
	}, tags)
	assert.Equal(t, []string{"encoder", "format_name", "major_brand", "title"}, tags.Keys())
}

func TestInspectorReportKeepsStreams(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			return CommandResult{Stdout: probeOutput}, nil
		},
	}

	report, err := NewInspector("ffprobe", runner, nil).Report(context.Background(), "clip.mp4")
	require.NoError(t, err)
	require.Len(t, report.Streams, 1)
	assert.Equal(t, "h264", report.Streams[0]["codec_name"])
	assert.Equal(t, json.Number("100"), report.Format["probe_score"])
}

func TestInspectorToolFailure(t *testing.T) {
	stderr := "clip.mp4: Invalid data found when processing input\n"
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			return CommandResult{Stderr: stderr, ExitCode: 1}, errors.New("exit status 1")
		},
	}

	_, err := NewInspector("ffprobe", runner, nil).Probe(context.Background(), "clip.mp4")
	require.Error(t, err)
	assert.True(t, fe.HasCode(err, fe.CodeToolFailed))
	assert.Equal(t, stderr, fe.UserMessage(err))
}

func TestInspectorStartFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			return CommandResult{ExitCode: -1}, errors.New(`exec: "ffprobe": executable file not found in $PATH`)
		},
	}

	_, err := NewInspector("ffprobe", runner, nil).Probe(context.Background(), "clip.mp4")
	assert.True(t, fe.HasCode(err, fe.CodeInternal))
	assert.Contains(t, fe.UserMessage(err), "executable file not found")
}

func TestInspectorMalformedOutput(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			return CommandResult{Stdout: "{not json"}, nil
		},
	}

	_, err := NewInspector("ffprobe", runner, nil).Report(context.Background(), "clip.mp4")
	assert.True(t, fe.HasCode(err, fe.CodeDecode))
}
