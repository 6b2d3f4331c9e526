package models

// UploadResponse is the JSON payload returned after a successful upload.
// Link duplicates URL for older clients that still read the link field.
type UploadResponse struct {
	Success         bool            `json:"success"`
	Filename        string          `json:"filename"`
	URL             string          `json:"url"`
	Link            string          `json:"link"`
	DateFolder      string          `json:"dateFolder"`
	RelativePath    string          `json:"relativePath"`
	Size            int64           `json:"size"`
	Type            string          `json:"type"`
	ClientType      string          `json:"clientType"`
	MimeTypeChanged bool            `json:"mimeTypeChanged"`
	PlayerMetadata  *PlayerMetadata `json:"playerMetadata,omitempty"`
}
