package processor

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"media-stamp/internal/domain/entities"
	fe "media-stamp/pkg/errors"
)

// structuralExcluded are container properties left out of the tag view.
var structuralExcluded = map[string]bool{
	"tags":             true,
	"filename":         true,
	"nb_streams":       true,
	"nb_programs":      true,
	"format_long_name": true,
	"start_time":       true,
	"duration":         true,
	"size":             true,
	"bit_rate":         true,
	"probe_score":      true,
}

// ProbeReport is the decoded ffprobe JSON document.
type ProbeReport struct {
	Format  map[string]any   `json:"format"`
	Streams []map[string]any `json:"streams"`
}

// Inspector reads container metadata with ffprobe.
type Inspector struct {
	ffprobe string
	runner  CommandRunner
	log     *zap.Logger
}

func NewInspector(ffprobePath string, runner CommandRunner, log *zap.Logger) *Inspector {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Inspector{ffprobe: ffprobePath, runner: runner, log: log}
}

func ProbeArgs(path string) []string {
	return []string{"-v", "error", "-print_format", "json", "-show_format", "-show_streams", path}
}

// Report runs ffprobe on path and decodes its JSON output. Numbers are kept
// as json.Number so they render exactly as ffprobe printed them.
func (i *Inspector) Report(ctx context.Context, path string) (ProbeReport, error) {
	res, err := i.runner.Run(ctx, i.ffprobe, ProbeArgs(path)...)
	if err != nil || res.ExitCode != 0 {
		i.log.Debug("ffprobe failed", zap.String("path", path), zap.Int("exit_code", res.ExitCode))
		return ProbeReport{}, commandError(ctx, res, err)
	}

	var report ProbeReport
	dec := json.NewDecoder(strings.NewReader(res.Stdout))
	dec.UseNumber()
	if err := dec.Decode(&report); err != nil {
		return ProbeReport{}, fe.ErrDecode(path, err)
	}
	return report, nil
}

// Probe returns the flat tag view of path.
func (i *Inspector) Probe(ctx context.Context, path string) (entities.VideoTagSet, error) {
	report, err := i.Report(ctx, path)
	if err != nil {
		return nil, err
	}
	return MergeTags(report.Format), nil
}

// MergeTags flattens a probe format section: free-form tags first, then the
// structural properties, which win on a key collision.
func MergeTags(format map[string]any) entities.VideoTagSet {
	out := entities.VideoTagSet{}
	if tags, ok := format["tags"].(map[string]any); ok {
		for k, v := range tags {
			out[k] = valueString(v)
		}
	}
	for k, v := range format {
		if structuralExcluded[k] {
			continue
		}
		out[k] = valueString(v)
	}
	return out
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
