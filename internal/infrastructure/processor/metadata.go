package processor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"media-stamp/internal/domain/entities"
	fe "media-stamp/pkg/errors"
	"media-stamp/pkg/file"
)

const descriptionLayout = "2006-01-02 15:04:05"

// Normalizer replaces the EXIF block of an image with the canonical
// provenance record.
type Normalizer struct {
	codec    ExifCodec
	identity entities.Identity
	quality  int
	now      func() time.Time
	log      *zap.Logger
}

func NewNormalizer(identity entities.Identity, jpegQuality int, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{
		identity: identity,
		quality:  jpegQuality,
		now:      time.Now,
		log:      log,
	}
}

// WithClock overrides the time source used for the description timestamp.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// NormalizeMetadata writes <stem>_Mfix<ext> and returns its path together with
// the metadata found in imagePath and the record that replaced it.
func (n *Normalizer) NormalizeMetadata(imagePath string) (string, entities.MetadataRecord, entities.MetadataRecord, error) {
	before, err := n.codec.ReadMetadata(imagePath)
	if err != nil {
		return "", nil, nil, err
	}

	after := CanonicalRecord(n.identity, n.now())
	payload, err := n.codec.EncodeExif(after)
	if err != nil {
		return "", nil, nil, err
	}

	data, err := n.jpegBytes(imagePath)
	if err != nil {
		return "", nil, nil, err
	}
	out, err := n.codec.EmbedExif(data, payload)
	if err != nil {
		var me *fe.MediaError
		if errors.As(err, &me) {
			return "", nil, nil, err
		}
		return "", nil, nil, fe.ErrDecode(imagePath, err)
	}

	outputPath := file.DerivedPath(imagePath, file.SuffixMetadataFix)
	err = file.WriteAtomic(outputPath, func(w io.Writer) error {
		_, err := w.Write(out)
		return err
	})
	if err != nil {
		return "", nil, nil, fe.ErrEncode(outputPath, err)
	}

	n.log.Debug("metadata normalized",
		zap.String("path", imagePath),
		zap.String("output", outputPath),
		zap.Int("fields_before", before.Len()),
	)
	return outputPath, before, after, nil
}

// jpegBytes returns the file as a JPEG stream, encoding it once when the
// source is another format.
func (n *Normalizer) jpegBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fe.ErrNotFound(path, err)
		}
		return nil, fe.ErrDecode(path, err)
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1] == markerSOI {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fe.ErrDecode(path, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return nil, fe.ErrEncode(path, err)
	}
	return buf.Bytes(), nil
}

// CanonicalRecord is the metadata every normalized image carries. Only the
// description timestamp depends on now.
func CanonicalRecord(id entities.Identity, now time.Time) entities.MetadataRecord {
	description := fmt.Sprintf("Created on %s - %s", now.Format(descriptionLayout), id.Organization)

	r := entities.EmptyRecord()
	r.Set(entities.GroupPrimary, "Artist", entities.StringField(id.Author))
	r.Set(entities.GroupPrimary, "ImageDescription", entities.BytesField([]byte(description)))
	r.Set(entities.GroupPrimary, "XPComment", entities.WideField(id.Contact))
	r.Set(entities.GroupCapture, "UserComment", entities.WideField(id.ProjectLabel))
	return r
}

// FormatRecord renders record as "Field: value" lines grouped in display
// order.
func FormatRecord(record entities.MetadataRecord) string {
	if record.Len() == 0 {
		return "No metadata"
	}

	var b strings.Builder
	for _, group := range entities.Groups {
		names := record.FieldNames(group)
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(&b, "[%s]\n", group)
		for _, name := range names {
			v, _ := record.Get(group, name)
			fmt.Fprintf(&b, "%s: %s\n", name, FieldText(v))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FieldText returns a printable rendering of v.
func FieldText(v entities.FieldValue) string {
	switch v.Kind {
	case entities.FieldWideString:
		if v.Text == "" && v.Raw != nil {
			return DecodeWide(v.Raw)
		}
		return stripNUL(v.Text)
	case entities.FieldBytes:
		trimmed := bytes.TrimRight(v.Raw, "\x00")
		if isPrintable(trimmed) {
			return string(trimmed)
		}
		return fmt.Sprintf("<%d bytes>", len(v.Raw))
	default:
		return v.Text
	}
}

// DecodeWide decodes UTF-16 (little endian unless a BOM says otherwise).
// Input that is not valid UTF-16 is read as UTF-8 with invalid sequences
// replaced by U+FFFD. NUL characters are removed either way.
func DecodeWide(b []byte) string {
	if s, ok := strictUTF16(b, byteOrder(b)); ok {
		return s
	}
	return permissiveText(b)
}

// byteOrder reads the BOM, if any. The surrogate check must use the same
// order as the decoder.
func byteOrder(b []byte) unicode.Endianness {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		return unicode.BigEndian
	}
	return unicode.LittleEndian
}

func strictUTF16(b []byte, order unicode.Endianness) (string, bool) {
	if len(b)%2 != 0 {
		return "", false
	}

	for i := 0; i < len(b); i += 2 {
		u := codeUnit(b[i:i+2], order)
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+4 > len(b) {
				return "", false
			}
			next := codeUnit(b[i+2:i+4], order)
			if next < 0xDC00 || next > 0xDFFF {
				return "", false
			}
			i += 2
		case u >= 0xDC00 && u <= 0xDFFF:
			return "", false
		}
	}

	decoded, err := unicode.UTF16(order, unicode.UseBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return stripNUL(string(decoded)), true
}

func codeUnit(b []byte, order unicode.Endianness) uint16 {
	if order == unicode.BigEndian {
		return uint16(b[0])<<8 | uint16(b[1])
	}
	return uint16(b[1])<<8 | uint16(b[0])
}

func permissiveText(b []byte) string {
	return stripNUL(strings.ToValidUTF8(string(b), "\uFFFD"))
}

func stripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func isPrintable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r != '\n' && r != '\t' && !strconv.IsPrint(r) {
			return false
		}
	}
	return true
}
