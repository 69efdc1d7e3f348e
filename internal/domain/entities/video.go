package entities

import "sort"

// VideoTagSet is the flat tag view of a probed container.
type VideoTagSet map[string]string

// Keys returns the tag names in sorted order.
func (s VideoTagSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TagsFromMap orders m by key so the resulting command line is reproducible.
func TagsFromMap(m map[string]string) []Tag {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, Tag{Key: k, Value: m[k]})
	}
	return tags
}

// FilterChain holds optional filter expressions. A nil field means no filter,
// which is not the same as an empty expression.
type FilterChain struct {
	Video *string `json:"video,omitempty"`
	Audio *string `json:"audio,omitempty"`
}

// Present reports whether any filter is set; it decides re-encode vs stream copy.
func (f FilterChain) Present() bool {
	return f.Video != nil || f.Audio != nil
}

type RewriteRequest struct {
	InputPath  string
	OutputPath string
	Tags       []Tag
	Filters    FilterChain
}

type TranscodeResult struct {
	OutputPath string   `json:"output_path"`
	Message    string   `json:"message"`
	Reencoded  bool     `json:"reencoded"`
	Args       []string `json:"args,omitempty"`
}
