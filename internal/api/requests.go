package api

import (
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PostAssembleDocumentRequest builds a document from a template stored at
// Folder/Name using the data file in Data.
type PostAssembleDocumentRequest struct {
	Name         string
	SaveOptions  *SaveOptionsData
	Data         io.Reader
	DataFileName string
	Folder       string
	DestFileName string
}

func (r *PostAssembleDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.SaveOptions, validation.Required),
	)
}

// CreateFolderRequest creates Path in storage.
type CreateFolderRequest struct {
	Path        string
	StorageName string
}

func (r *CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// DeleteFolderRequest removes Path; Recursive also removes its content.
type DeleteFolderRequest struct {
	Path        string
	StorageName string
	Recursive   bool
}

func (r *DeleteFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// CopyFolderRequest copies SrcPath to DestPath, optionally across storages.
type CopyFolderRequest struct {
	SrcPath         string
	DestPath        string
	SrcStorageName  string
	DestStorageName string
}

func (r *CopyFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SrcPath, validation.Required),
		validation.Field(&r.DestPath, validation.Required),
	)
}

// MoveFolderRequest moves SrcPath to DestPath, optionally across storages.
type MoveFolderRequest CopyFolderRequest

func (r *MoveFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SrcPath, validation.Required),
		validation.Field(&r.DestPath, validation.Required),
	)
}

// GetFilesListRequest lists the content of Path.
type GetFilesListRequest struct {
	Path        string
	StorageName string
}

func (r *GetFilesListRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// UploadFileRequest stores File at Path.
type UploadFileRequest struct {
	File        io.Reader
	Path        string
	StorageName string
}

func (r *UploadFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.File, validation.Required),
		validation.Field(&r.Path, validation.Required),
	)
}

// DownloadFileRequest fetches Path, or a specific VersionID of it.
type DownloadFileRequest struct {
	Path        string
	StorageName string
	VersionID   string
}

func (r *DownloadFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// CopyFileRequest copies SrcPath to DestPath.
type CopyFileRequest struct {
	SrcPath         string
	DestPath        string
	SrcStorageName  string
	DestStorageName string
	VersionID       string
}

func (r *CopyFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SrcPath, validation.Required),
		validation.Field(&r.DestPath, validation.Required),
	)
}

// MoveFileRequest moves SrcPath to DestPath.
type MoveFileRequest CopyFileRequest

func (r *MoveFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SrcPath, validation.Required),
		validation.Field(&r.DestPath, validation.Required),
	)
}

// DeleteFileRequest removes Path, or a specific VersionID of it.
type DeleteFileRequest struct {
	Path        string
	StorageName string
	VersionID   string
}

func (r *DeleteFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// ObjectExistsRequest checks whether Path exists.
type ObjectExistsRequest struct {
	Path        string
	StorageName string
	VersionID   string
}

func (r *ObjectExistsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// StorageExistsRequest checks whether StorageName is configured.
type StorageExistsRequest struct {
	StorageName string
}

func (r *StorageExistsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.StorageName, validation.Required),
	)
}

// GetDiscUsageRequest reports usage of StorageName (default storage if empty).
type GetDiscUsageRequest struct {
	StorageName string
}

func (r *GetDiscUsageRequest) Validate() error {
	return nil
}

// GetFileVersionsRequest lists the versions of Path.
type GetFileVersionsRequest struct {
	Path        string
	StorageName string
}

func (r *GetFileVersionsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}
