package processor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/text/encoding/unicode"

	"media-stamp/internal/domain/entities"
	fe "media-stamp/pkg/errors"
)

const (
	exifHeader = "Exif\x00\x00"

	tagExifIFDPointer = 0x8769

	typeByte      uint16 = 1
	typeASCII     uint16 = 2
	typeLong      uint16 = 4
	typeUndefined uint16 = 7

	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP0  = 0xE0
	markerAPP1  = 0xE1
	markerAPP13 = 0xED
	markerTEM   = 0x01
	markerScan  = 0x00 // pseudo marker for entropy coded data
)

// ThumbnailField names the embedded preview in the thumbnail group.
const ThumbnailField = "JPEGThumbnail"

// userComment charset prefixes, eight bytes each.
var (
	charsetUnicode = []byte("UNICODE\x00")
	charsetASCII   = []byte("ASCII\x00\x00\x00")
)

type tagSpec struct {
	id    uint16
	typ   uint16
	group entities.MetadataGroup
}

// writableTags lists the fields EncodeExif knows how to store.
var writableTags = map[string]tagSpec{
	"ImageDescription":  {0x010E, typeASCII, entities.GroupPrimary},
	"Make":              {0x010F, typeASCII, entities.GroupPrimary},
	"Model":             {0x0110, typeASCII, entities.GroupPrimary},
	"Software":          {0x0131, typeASCII, entities.GroupPrimary},
	"DateTime":          {0x0132, typeASCII, entities.GroupPrimary},
	"Artist":            {0x013B, typeASCII, entities.GroupPrimary},
	"Copyright":         {0x8298, typeASCII, entities.GroupPrimary},
	"XPTitle":           {0x9C9B, typeByte, entities.GroupPrimary},
	"XPComment":         {0x9C9C, typeByte, entities.GroupPrimary},
	"XPAuthor":          {0x9C9D, typeByte, entities.GroupPrimary},
	"XPKeywords":        {0x9C9E, typeByte, entities.GroupPrimary},
	"XPSubject":         {0x9C9F, typeByte, entities.GroupPrimary},
	"DateTimeOriginal":  {0x9003, typeASCII, entities.GroupCapture},
	"DateTimeDigitized": {0x9004, typeASCII, entities.GroupCapture},
	"UserComment":       {0x9286, typeUndefined, entities.GroupCapture},
	"ImageUniqueID":     {0xA420, typeASCII, entities.GroupCapture},
}

var pointerFields = map[exif.FieldName]bool{
	exif.ExifIFDPointer:             true,
	exif.GPSInfoIFDPointer:          true,
	exif.InteroperabilityIFDPointer: true,
}

var wideFields = map[exif.FieldName]bool{
	exif.XPTitle:     true,
	exif.XPComment:   true,
	exif.XPAuthor:    true,
	exif.XPKeywords:  true,
	exif.XPSubject:   true,
	exif.UserComment: true,
}

// ExifCodec reads and writes the EXIF block of image files.
type ExifCodec struct{}

// ReadMetadata returns the grouped EXIF fields of path. Files without an
// EXIF block yield an empty record.
func (ExifCodec) ReadMetadata(path string) (entities.MetadataRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fe.ErrNotFound(path, err)
		}
		return nil, fe.ErrDecode(path, err)
	}
	defer f.Close()

	record := entities.EmptyRecord()

	x, err := exif.Decode(f)
	if x == nil {
		// no EXIF segment, or one goexif cannot make sense of
		return record, nil
	}
	if err != nil && exif.IsCriticalError(err) {
		return record, nil
	}

	if err := x.Walk(recordWalker{record: record, order: x.Tiff.Order}); err != nil {
		return nil, fe.ErrDecode(path, err)
	}

	if thumb := thumbnailBytes(x); thumb != nil {
		record.Set(entities.GroupThumbnail, ThumbnailField, entities.BytesField(thumb))
	}
	return record, nil
}

type recordWalker struct {
	record entities.MetadataRecord
	order  binary.ByteOrder
}

func (w recordWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if pointerFields[name] {
		return nil
	}
	w.record.Set(groupOf(name, tag.Id), string(name), fieldFromTag(name, tag, w.order))
	return nil
}

func groupOf(name exif.FieldName, id uint16) entities.MetadataGroup {
	switch {
	case strings.HasPrefix(string(name), "GPS"):
		return entities.GroupGPS
	case name == exif.InteroperabilityIndex:
		return entities.GroupInterop
	case name == exif.ThumbJPEGInterchangeFormat || name == exif.ThumbJPEGInterchangeFormatLength:
		return entities.GroupSecondary
	case id < 0x8000 || id == 0x8298 || (id >= 0x9C9B && id <= 0x9C9F):
		return entities.GroupPrimary
	default:
		return entities.GroupCapture
	}
}

func fieldFromTag(name exif.FieldName, tag *tiff.Tag, order binary.ByteOrder) entities.FieldValue {
	raw := append([]byte(nil), tag.Val...)

	if wideFields[name] {
		if name == exif.UserComment {
			return userCommentField(raw, order)
		}
		return entities.FieldValue{Kind: entities.FieldWideString, Text: DecodeWide(raw), Raw: raw}
	}

	switch tag.Type {
	case tiff.DTAscii:
		s, err := tag.StringVal()
		if err != nil {
			return entities.BytesField(raw)
		}
		return entities.StringField(s)
	case tiff.DTByte, tiff.DTUndefined, tiff.DTSByte:
		return entities.BytesField(raw)
	default:
		return entities.StringField(tag.String())
	}
}

func userCommentField(raw []byte, order binary.ByteOrder) entities.FieldValue {
	v := entities.FieldValue{Kind: entities.FieldWideString, Raw: raw}
	if len(raw) < 8 {
		v.Text = DecodeWide(raw)
		return v
	}

	prefix, body := raw[:8], raw[8:]
	switch {
	case bytes.Equal(prefix, charsetUnicode):
		v.Text = decodeUTF16(body, order)
	case bytes.Equal(prefix, charsetASCII):
		v.Text = permissiveText(body)
	default:
		v.Text = DecodeWide(body)
	}
	return v
}

func decodeUTF16(b []byte, order binary.ByteOrder) string {
	if order == binary.BigEndian {
		if s, ok := strictUTF16(b, unicode.BigEndian); ok {
			return s
		}
		return permissiveText(b)
	}
	return DecodeWide(b)
}

func thumbnailBytes(x *exif.Exif) []byte {
	offTag, err := x.Get(exif.ThumbJPEGInterchangeFormat)
	if err != nil {
		return nil
	}
	lenTag, err := x.Get(exif.ThumbJPEGInterchangeFormatLength)
	if err != nil {
		return nil
	}
	start, err := offTag.Int(0)
	if err != nil {
		return nil
	}
	n, err := lenTag.Int(0)
	if err != nil {
		return nil
	}
	if start < 0 || n <= 0 || start+n > len(x.Raw) {
		return nil
	}
	return append([]byte(nil), x.Raw[start:start+n]...)
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

// EncodeExif serializes the primary and capture groups of record into an APP1
// payload ("Exif\0\0" followed by a little-endian TIFF structure).
func (ExifCodec) EncodeExif(record entities.MetadataRecord) ([]byte, error) {
	var primary, capture []ifdEntry

	for _, group := range entities.Groups {
		for _, name := range record.FieldNames(group) {
			spec, ok := writableTags[name]
			if !ok || spec.group != group {
				return nil, fe.ErrUnsupported(fmt.Sprintf("cannot write %s field %q", group, name))
			}
			v, _ := record.Get(group, name)
			value, err := encodeValue(name, spec, v)
			if err != nil {
				return nil, err
			}
			e := ifdEntry{tag: spec.id, typ: spec.typ, count: uint32(len(value)), value: value}
			if group == entities.GroupPrimary {
				primary = append(primary, e)
			} else {
				capture = append(capture, e)
			}
		}
	}

	const ifd0Offset = 8
	if len(capture) > 0 {
		// placeholder; the real offset depends on the size of IFD0
		primary = append(primary, ifdEntry{tag: tagExifIFDPointer, typ: typeLong, count: 1, value: make([]byte, 4)})
	}
	sortEntries(primary)
	sortEntries(capture)

	exifOffset := uint32(ifd0Offset + ifdSize(primary))
	for i := range primary {
		if primary[i].tag == tagExifIFDPointer {
			binary.LittleEndian.PutUint32(primary[i].value, exifOffset)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(exifHeader)
	buf.WriteString("II")
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0x2A))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(ifd0Offset))
	buf.Write(encodeIFD(primary, ifd0Offset))
	if len(capture) > 0 {
		buf.Write(encodeIFD(capture, exifOffset))
	}
	return buf.Bytes(), nil
}

func encodeValue(name string, spec tagSpec, v entities.FieldValue) ([]byte, error) {
	switch v.Kind {
	case entities.FieldString:
		return append([]byte(v.Text), 0), nil
	case entities.FieldBytes:
		b := append([]byte(nil), v.Raw...)
		if spec.typ == typeASCII && (len(b) == 0 || b[len(b)-1] != 0) {
			b = append(b, 0)
		}
		return b, nil
	case entities.FieldWideString:
		if v.Text == "" && v.Raw != nil {
			return append([]byte(nil), v.Raw...), nil
		}
		wide, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(v.Text))
		if err != nil {
			return nil, fe.ErrEncode(name, err)
		}
		if spec.typ == typeUndefined {
			return append(append([]byte(nil), charsetUnicode...), wide...), nil
		}
		return append(wide, 0, 0), nil
	default:
		return nil, fe.ErrUnsupported(fmt.Sprintf("unknown kind for field %q", name))
	}
}

func sortEntries(entries []ifdEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
}

// ifdSize is the encoded length of an IFD plus its value area, word aligned.
func ifdSize(entries []ifdEntry) int {
	n := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.value) > 4 {
			n += len(e.value) + len(e.value)%2
		}
	}
	return n
}

// encodeIFD lays out entries at offset (relative to the TIFF header). The next
// IFD link is always zero.
func encodeIFD(entries []ifdEntry, offset uint32) []byte {
	var head, data bytes.Buffer
	dataStart := offset + uint32(2+12*len(entries)+4)

	_ = binary.Write(&head, binary.LittleEndian, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&head, binary.LittleEndian, e.tag)
		_ = binary.Write(&head, binary.LittleEndian, e.typ)
		_ = binary.Write(&head, binary.LittleEndian, e.count)
		if len(e.value) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.value)
			head.Write(inline)
			continue
		}
		_ = binary.Write(&head, binary.LittleEndian, dataStart+uint32(data.Len()))
		data.Write(e.value)
		if len(e.value)%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(&head, binary.LittleEndian, uint32(0))

	return append(head.Bytes(), data.Bytes()...)
}

type jpegSegment struct {
	marker byte
	data   []byte
}

func parseJPEGSegments(data []byte) ([]jpegSegment, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, errors.New("not a JPEG stream")
	}
	segs := []jpegSegment{{marker: markerSOI}}

	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			return nil, fmt.Errorf("unexpected byte 0x%02X at offset %d", data[i], i)
		}
		// fill bytes
		for i < len(data) && data[i] == 0xFF {
			i++
		}
		if i >= len(data) {
			return nil, errors.New("truncated marker")
		}
		marker := data[i]
		i++

		if marker == markerEOI {
			segs = append(segs, jpegSegment{marker: markerEOI})
			return segs, nil
		}
		if standalone(marker) {
			segs = append(segs, jpegSegment{marker: marker})
			continue
		}

		if i+2 > len(data) {
			return nil, errors.New("truncated segment length")
		}
		segLen := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
		i += 2
		if segLen < 0 || i+segLen > len(data) {
			return nil, fmt.Errorf("segment 0x%02X overruns the stream", marker)
		}
		segs = append(segs, jpegSegment{marker: marker, data: data[i : i+segLen]})
		i += segLen

		if marker == markerSOS {
			// entropy coded data through EOI, kept verbatim
			segs = append(segs, jpegSegment{marker: markerScan, data: data[i:]})
			return segs, nil
		}
	}
	return segs, nil
}

// standalone markers carry no length field.
func standalone(marker byte) bool {
	return marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7)
}

func writeJPEGSegments(segs []jpegSegment) []byte {
	var buf bytes.Buffer
	for _, seg := range segs {
		switch {
		case seg.marker == markerScan:
			buf.Write(seg.data)
		case seg.marker == markerSOI || seg.marker == markerEOI || standalone(seg.marker):
			buf.Write([]byte{0xFF, seg.marker})
		default:
			buf.Write([]byte{0xFF, seg.marker})
			_ = binary.Write(&buf, binary.BigEndian, uint16(len(seg.data)+2))
			buf.Write(seg.data)
		}
	}
	return buf.Bytes()
}

// EmbedExif replaces every APP1 and APP13 segment of a JPEG stream with a
// single APP1 carrying payload. Image data is copied unchanged.
func (ExifCodec) EmbedExif(jpegData, payload []byte) ([]byte, error) {
	if len(payload)+2 > 0xFFFF {
		return nil, fe.ErrInvalidInput("metadata block exceeds the APP1 size limit")
	}
	segs, err := parseJPEGSegments(jpegData)
	if err != nil {
		return nil, err
	}

	out := make([]jpegSegment, 0, len(segs)+1)
	inserted := false
	for _, seg := range segs {
		if seg.marker == markerAPP1 || seg.marker == markerAPP13 {
			continue
		}
		if !inserted && seg.marker != markerSOI && seg.marker != markerAPP0 {
			out = append(out, jpegSegment{marker: markerAPP1, data: payload})
			inserted = true
		}
		out = append(out, seg)
	}
	if !inserted {
		out = append(out, jpegSegment{marker: markerAPP1, data: payload})
	}
	return writeJPEGSegments(out), nil
}
