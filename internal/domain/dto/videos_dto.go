package dto

type InspectVideosRequest struct {
	Paths []string `json:"paths"`
}

type InspectResult struct {
	Path  string            `json:"path"`
	Tags  map[string]string `json:"tags,omitempty"`
	Keys  []string          `json:"keys,omitempty"` // sorted tag names
	Error string            `json:"error,omitempty"`
}

type InspectVideosResponse struct {
	Status  string          `json:"status"`
	Results []InspectResult `json:"results"`
}

// RewriteVideoRequest edits one video. A nil filter is absent; blank filters
// are treated as absent too.
type RewriteVideoRequest struct {
	Path        string            `json:"path"`
	Tags        map[string]string `json:"tags"`
	VideoFilter *string           `json:"video_filter,omitempty"`
	AudioFilter *string           `json:"audio_filter,omitempty"`
}

type CamouflageVideosRequest struct {
	Paths []string `json:"paths"`
}

type VideoResult struct {
	Source    string   `json:"source"`
	Output    string   `json:"output,omitempty"`
	Folder    string   `json:"folder,omitempty"`
	Message   string   `json:"message"`
	Reencoded bool     `json:"reencoded"`
	Published string   `json:"published,omitempty"`
	Args      []string `json:"args,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (r VideoResult) Failed() bool {
	return r.Error != ""
}

type VideoResultsResponse struct {
	Status  string        `json:"status"`
	Results []VideoResult `json:"results"`
}
