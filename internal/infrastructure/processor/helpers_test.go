package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"media-stamp/internal/domain/entities"
)

// fakeRunner records invocations and delegates to injected behavior.
type fakeRunner struct {
	calls [][]string
	run   func(ctx context.Context, name string, args ...string) (CommandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.run == nil {
		return CommandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

func testIdentity() entities.Identity {
	return entities.Identity{
		Organization: "Acme Studio",
		Author:       "Acme Author",
		Contact:      "Contato: ação@acme.example",
		ProjectLabel: "Projeto de design gráfico",
		Copyright:    "© 2024 Acme Studio",
	}
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func writeImage(t *testing.T, path string, img image.Image, format imaging.Format) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)))
	return buf.Bytes()
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
