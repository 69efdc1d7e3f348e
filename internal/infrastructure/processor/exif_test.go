package processor

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-stamp/internal/domain/entities"
	fe "media-stamp/pkg/errors"
)

func TestExifRoundTrip(t *testing.T) {
	codec := ExifCodec{}
	id := testIdentity()
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	payload, err := codec.EncodeExif(CanonicalRecord(id, now))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, []byte("Exif\x00\x00II")))

	src := jpegBytes(t, solidImage(32, 24, color.NRGBA{G: 200, A: 255}))
	embedded, err := codec.EmbedExif(src, payload)
	require.NoError(t, err)

	path := tempPath(t, "stamped.jpg")
	require.NoError(t, os.WriteFile(path, embedded, 0o644))

	record, err := codec.ReadMetadata(path)
	require.NoError(t, err)

	test := []struct {
		group entities.MetadataGroup
		name  string
		want  string
	}{
		{entities.GroupPrimary, "Artist", "Acme Author"},
		{entities.GroupPrimary, "ImageDescription", "Created on 2024-05-01 10:30:00 - Acme Studio"},
		{entities.GroupPrimary, "XPComment", "Contato: ação@acme.example"},
		{entities.GroupCapture, "UserComment", "Projeto de design gráfico"},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := record.Get(tt.group, tt.name)
			require.True(t, ok, "missing %s/%s", tt.group, tt.name)
			assert.Equal(t, tt.want, FieldText(v))
		})
	}

	_, ok := record.Get(entities.GroupPrimary, "ExifIFDPointer")
	assert.False(t, ok)
	assert.Empty(t, record[entities.GroupGPS])
	assert.Empty(t, record[entities.GroupThumbnail])
}

func TestEmbedExifKeepsPixels(t *testing.T) {
	codec := ExifCodec{}
	src := jpegBytes(t, solidImage(40, 30, color.NRGBA{R: 90, G: 30, B: 160, A: 255}))
	payload, err := codec.EncodeExif(CanonicalRecord(testIdentity(), time.Now()))
	require.NoError(t, err)

	embedded, err := codec.EmbedExif(src, payload)
	require.NoError(t, err)

	before, err := imaging.Decode(bytes.NewReader(src))
	require.NoError(t, err)
	after, err := imaging.Decode(bytes.NewReader(embedded))
	require.NoError(t, err)
	assert.Equal(t, imaging.Clone(before).Pix, imaging.Clone(after).Pix)
}

func TestEmbedExifReplacesMetadataSegments(t *testing.T) {
	codec := ExifCodec{}
	segs, err := parseJPEGSegments(jpegBytes(t, solidImage(8, 8, color.White)))
	require.NoError(t, err)

	withJunk := append([]jpegSegment{
		segs[0],
		{marker: markerAPP0, data: []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")},
		{marker: markerAPP1, data: []byte("Exif\x00\x00old")},
		{marker: markerAPP1, data: []byte("http://ns.adobe.com/xap/1.0/\x00<x/>")},
		{marker: markerAPP13, data: []byte("Photoshop 3.0\x00iptc")},
	}, segs[1:]...)

	out, err := codec.EmbedExif(writeJPEGSegments(withJunk), []byte("Exif\x00\x00new"))
	require.NoError(t, err)

	parsed, err := parseJPEGSegments(out)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(parsed), 3)
	assert.Equal(t, byte(markerSOI), parsed[0].marker)
	assert.Equal(t, byte(markerAPP0), parsed[1].marker)
	assert.Equal(t, byte(markerAPP1), parsed[2].marker)
	assert.Equal(t, []byte("Exif\x00\x00new"), parsed[2].data)

	app1 := 0
	for _, seg := range parsed {
		assert.NotEqual(t, byte(markerAPP13), seg.marker)
		if seg.marker == markerAPP1 {
			app1++
		}
	}
	assert.Equal(t, 1, app1)
}

func TestEmbedExifRejectsNonJPEG(t *testing.T) {
	_, err := ExifCodec{}.EmbedExif([]byte("\x89PNG\r\n"), []byte("Exif\x00\x00"))
	assert.Error(t, err)
}

func TestEncodeExifUnsupportedField(t *testing.T) {
	test := []struct {
		name  string
		group entities.MetadataGroup
		field string
	}{
		{"unknown_name", entities.GroupPrimary, "Nickname"},
		{"wrong_group", entities.GroupCapture, "Artist"},
		{"gps", entities.GroupGPS, "GPSLatitude"},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			r := entities.EmptyRecord()
			r.Set(tt.group, tt.field, entities.StringField("x"))
			_, err := ExifCodec{}.EncodeExif(r)
			assert.True(t, fe.HasCode(err, fe.CodeUnsupported))
		})
	}
}

func TestEncodeExifWithoutCaptureHasNoExifPointer(t *testing.T) {
	r := entities.EmptyRecord()
	r.Set(entities.GroupPrimary, "Artist", entities.StringField("A"))

	payload, err := ExifCodec{}.EncodeExif(r)
	require.NoError(t, err)
	// header(6) + tiff header(8) + count(2) + one entry(12) + next(4)
	assert.Len(t, payload, 6+8+2+12+4)
}

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.jpg")
	require.NoError(t, os.WriteFile(plain, jpegBytes(t, solidImage(4, 4, color.Black)), 0o644))

	record, err := ExifCodec{}.ReadMetadata(plain)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Len())
	assert.Len(t, record, len(entities.Groups))

	png := filepath.Join(dir, "plain.png")
	writeImage(t, png, solidImage(4, 4, color.Black), imaging.PNG)
	record, err = ExifCodec{}.ReadMetadata(png)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Len())

	_, err = ExifCodec{}.ReadMetadata(filepath.Join(dir, "missing.jpg"))
	assert.True(t, fe.HasCode(err, fe.CodeNotFound))
}
