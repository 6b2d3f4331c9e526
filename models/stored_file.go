package models

// StoredFile describes one persisted upload on disk. Files are immutable once
// written and are only removed by external cleanup; there is no deletion API.
type StoredFile struct {
	ID         string `json:"id"`
	Extension  string `json:"extension"`
	MimeType   string `json:"mimeType"`
	Size       int64  `json:"size"`
	DateFolder string `json:"dateFolder"`
	RelPath    string `json:"relativePath"`
	AbsPath    string `json:"-"`
}

// Filename returns the on-disk name, "{id}.{extension}".
func (f StoredFile) Filename() string {
	return f.ID + "." + f.Extension
}

// PlayerMetadata is the optional caller-supplied identity attached to an
// upload via the player-metadata header. It is echoed back and forwarded to
// the webhook; it is only persisted when metadata sidecars are enabled.
type PlayerMetadata struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}
