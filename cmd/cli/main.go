package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"media-stamp/internal/bootstrap"
	"media-stamp/internal/domain/dto"
	"media-stamp/internal/pkg/config"
	pkglogger "media-stamp/pkg/logger"
)

const usageText = `usage: media-stamp <command> [flags] files...

commands:
  image       [-watermark logo.png] files...
  probe       files...
  edit        [-tag key=value]... [-vf expr] [-af expr] files...
  camouflage  files...
`

func main() {
	cfg := config.LoadConfig()
	log := pkglogger.Must(cfg.Log.Level, pkglogger.FormatConsole)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	services, err := bootstrap.NewServices(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		stop()
		os.Exit(1)
	}

	code := run(ctx, os.Args[1:], services, os.Stdout, os.Stderr)
	stop()
	_ = log.Sync()
	os.Exit(code)
}

// run returns the process exit code. Per-file failures are printed and do
// not change it; only usage errors do.
func run(ctx context.Context, args []string, svc *bootstrap.Services, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return 2
	}

	switch args[0] {
	case "image":
		return runImage(ctx, args[1:], svc, stdout, stderr)
	case "probe":
		return runProbe(ctx, args[1:], svc, stdout, stderr)
	case "edit":
		return runEdit(ctx, args[1:], svc, stdout, stderr)
	case "camouflage":
		return runCamouflage(ctx, args[1:], svc, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usageText)
		return 2
	}
}

func parseFiles(fs *flag.FlagSet, args []string, stderr io.Writer) ([]string, bool) {
	if err := fs.Parse(args); err != nil {
		return nil, false
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(stderr, "%s: no files given\n", fs.Name())
		return nil, false
	}
	return fs.Args(), true
}

func runImage(ctx context.Context, args []string, svc *bootstrap.Services, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	fs.SetOutput(stderr)
	watermark := fs.String("watermark", "", "watermark image (defaults to WATERMARK_PATH)")
	files, ok := parseFiles(fs, args, stderr)
	if !ok {
		return 2
	}

	for _, res := range svc.Images.ProcessBatch(ctx, files, *watermark) {
		if res.Failed() {
			fmt.Fprintf(stdout, "FAIL %s: %s\n", res.Source, res.Error)
			continue
		}
		fmt.Fprintf(stdout, "OK   %s -> %s (sha256 %s)\n", res.Source, res.Output, res.SHA256)
		if res.Published != "" {
			fmt.Fprintf(stdout, "     published %s\n", res.Published)
		}
		fmt.Fprintf(stdout, "     before:\n%s\n", indent(res.Before))
		fmt.Fprintf(stdout, "     after:\n%s\n", indent(res.After))
	}
	return 0
}

func runProbe(ctx context.Context, args []string, svc *bootstrap.Services, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	files, ok := parseFiles(fs, args, stderr)
	if !ok {
		return 2
	}

	for _, res := range svc.Videos.InspectBatch(ctx, files) {
		if res.Error != "" {
			fmt.Fprintf(stdout, "FAIL %s: %s\n", res.Path, res.Error)
			continue
		}
		fmt.Fprintf(stdout, "%s\n", res.Path)
		for _, k := range res.Keys {
			fmt.Fprintf(stdout, "  %s: %s\n", k, res.Tags[k])
		}
	}
	return 0
}

func runEdit(ctx context.Context, args []string, svc *bootstrap.Services, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tags := tagFlag{}
	fs.Var(tags, "tag", "metadata tag as key=value (repeatable)")
	vf := fs.String("vf", "", "video filter expression")
	af := fs.String("af", "", "audio filter expression")
	files, ok := parseFiles(fs, args, stderr)
	if !ok {
		return 2
	}

	// A filter flag that was never passed stays nil.
	var videoFilter, audioFilter *string
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "vf":
			videoFilter = vf
		case "af":
			audioFilter = af
		}
	})

	for _, path := range files {
		res := svc.Videos.Rewrite(ctx, dto.RewriteVideoRequest{
			Path:        path,
			Tags:        tags,
			VideoFilter: videoFilter,
			AudioFilter: audioFilter,
		})
		printVideoResult(stdout, res)
	}
	return 0
}

func runCamouflage(ctx context.Context, args []string, svc *bootstrap.Services, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("camouflage", flag.ContinueOnError)
	fs.SetOutput(stderr)
	files, ok := parseFiles(fs, args, stderr)
	if !ok {
		return 2
	}

	for _, res := range svc.Videos.CamouflageBatch(ctx, files) {
		printVideoResult(stdout, res)
	}
	return 0
}

func printVideoResult(w io.Writer, res dto.VideoResult) {
	if res.Failed() {
		fmt.Fprintf(w, "FAIL %s: %s\n", res.Source, res.Error)
		return
	}
	fmt.Fprintf(w, "OK   %s -> %s: %s\n", res.Source, res.Output, res.Message)
	if res.Published != "" {
		fmt.Fprintf(w, "     published %s\n", res.Published)
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "       " + l
	}
	return strings.Join(lines, "\n")
}

// tagFlag collects repeated -tag key=value flags.
type tagFlag map[string]string

func (t tagFlag) String() string {
	parts := make([]string, 0, len(t))
	for k, v := range t {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (t tagFlag) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("tag %q is not key=value", value)
	}
	t[strings.TrimSpace(k)] = v
	return nil
}
