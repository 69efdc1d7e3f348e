package entities

import "sort"

type MetadataGroup string

const (
	GroupPrimary   MetadataGroup = "primary"
	GroupCapture   MetadataGroup = "capture"
	GroupSecondary MetadataGroup = "secondary"
	GroupGPS       MetadataGroup = "gps"
	GroupInterop   MetadataGroup = "interop"
	GroupThumbnail MetadataGroup = "thumbnail"
)

// Groups lists the standard groups in display order.
var Groups = []MetadataGroup{
	GroupPrimary,
	GroupCapture,
	GroupSecondary,
	GroupGPS,
	GroupInterop,
	GroupThumbnail,
}

type FieldKind int

const (
	FieldString FieldKind = iota
	FieldWideString
	FieldBytes
)

// FieldValue holds one metadata field. Text is set for FieldString and
// FieldWideString, Raw for FieldBytes and for wide strings read from disk.
type FieldValue struct {
	Kind FieldKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	Raw  []byte    `json:"raw,omitempty"`
}

func StringField(s string) FieldValue {
	return FieldValue{Kind: FieldString, Text: s}
}

func WideField(s string) FieldValue {
	return FieldValue{Kind: FieldWideString, Text: s}
}

func BytesField(b []byte) FieldValue {
	return FieldValue{Kind: FieldBytes, Raw: b}
}

// MetadataRecord maps a group to its fields.
type MetadataRecord map[MetadataGroup]map[string]FieldValue

// EmptyRecord has every standard group present and empty.
func EmptyRecord() MetadataRecord {
	r := make(MetadataRecord, len(Groups))
	for _, g := range Groups {
		r[g] = map[string]FieldValue{}
	}
	return r
}

func (r MetadataRecord) Set(group MetadataGroup, name string, v FieldValue) {
	fields, ok := r[group]
	if !ok {
		fields = map[string]FieldValue{}
		r[group] = fields
	}
	fields[name] = v
}

func (r MetadataRecord) Get(group MetadataGroup, name string) (FieldValue, bool) {
	v, ok := r[group][name]
	return v, ok
}

// Len counts fields across all groups.
func (r MetadataRecord) Len() int {
	n := 0
	for _, fields := range r {
		n += len(fields)
	}
	return n
}

// FieldNames returns the field names of group in sorted order.
func (r MetadataRecord) FieldNames(group MetadataGroup) []string {
	names := make([]string, 0, len(r[group]))
	for name := range r[group] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
