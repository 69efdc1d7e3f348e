package dto

// ProcessImagesRequest runs watermark then metadata normalization on each path.
type ProcessImagesRequest struct {
	Paths     []string `json:"paths"`
	Watermark string   `json:"watermark,omitempty"` // defaults to the configured watermark
}

type ImageResult struct {
	Source       string `json:"source"`
	Intermediate string `json:"intermediate,omitempty"`
	Output       string `json:"output,omitempty"`
	Folder       string `json:"folder,omitempty"`
	Before       string `json:"before,omitempty"`
	After        string `json:"after,omitempty"`
	SHA256       string `json:"sha256,omitempty"`
	Published    string `json:"published,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (r ImageResult) Failed() bool {
	return r.Error != ""
}

type ProcessImagesResponse struct {
	Status  string        `json:"status"`
	Results []ImageResult `json:"results"`
}
