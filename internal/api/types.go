package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SaveOptionsData describes the document the service should produce.
type SaveOptionsData struct {
	SaveFormat string `json:"saveFormat"`
	FileName   string `json:"fileName,omitempty"`
}

// Validate requires an output format.
func (o SaveOptionsData) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.SaveFormat, validation.Required),
	)
}

// StorageFile is a file or folder entry in cloud storage.
type StorageFile struct {
	Name         string     `json:"name"`
	IsFolder     bool       `json:"isFolder"`
	ModifiedDate *time.Time `json:"modifiedDate,omitempty"`
	Size         int64      `json:"size"`
	Path         string     `json:"path"`
}

// FilesList is the content of a storage folder.
type FilesList struct {
	Value []StorageFile `json:"value"`
}

// FileVersion is one stored revision of a file.
type FileVersion struct {
	StorageFile
	VersionID string `json:"versionId"`
	IsLatest  bool   `json:"isLatest"`
}

// FileVersions lists the revisions of a file.
type FileVersions struct {
	Value []FileVersion `json:"value"`
}

// UploadError describes a file the service refused during upload.
type UploadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FilesUploadResult reports which files were stored.
type FilesUploadResult struct {
	Uploaded []string      `json:"uploaded"`
	Errors   []UploadError `json:"errors"`
}

// ObjectExist reports whether a storage path exists.
type ObjectExist struct {
	Exists   bool `json:"exists"`
	IsFolder bool `json:"isFolder"`
}

// StorageExist reports whether a named storage is configured.
type StorageExist struct {
	Exists bool `json:"exists"`
}

// DiscUsage reports storage consumption in bytes.
type DiscUsage struct {
	UsedSize  int64 `json:"usedSize"`
	TotalSize int64 `json:"totalSize"`
}
