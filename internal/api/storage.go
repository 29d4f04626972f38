package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
)

// CreateFolder creates req.Path.
func (a *AssemblyAPI) CreateFolder(ctx context.Context, req *CreateFolderRequest) error {
	if req == nil {
		return nilRequest("CreateFolder")
	}
	_, err := a.dispatch(ctx, req, operation{
		name:        "CreateFolder",
		method:      http.MethodPut,
		path:        "/assembly/storage/folder/{path}",
		pathParams:  []param{{"path", req.Path}},
		queryParams: []param{{"storageName", req.StorageName}},
	})
	return err
}

// DeleteFolder removes req.Path.
func (a *AssemblyAPI) DeleteFolder(ctx context.Context, req *DeleteFolderRequest) error {
	if req == nil {
		return nilRequest("DeleteFolder")
	}
	_, err := a.dispatch(ctx, req, operation{
		name:       "DeleteFolder",
		method:     http.MethodDelete,
		path:       "/assembly/storage/folder/{path}",
		pathParams: []param{{"path", req.Path}},
		queryParams: []param{
			{"storageName", req.StorageName},
			boolParam("recursive", req.Recursive),
		},
	})
	return err
}

// CopyFolder copies req.SrcPath to req.DestPath.
func (a *AssemblyAPI) CopyFolder(ctx context.Context, req *CopyFolderRequest) error {
	if req == nil {
		return nilRequest("CopyFolder")
	}
	return a.transferFolder(ctx, req, "CopyFolder", "copy", *req)
}

// MoveFolder moves req.SrcPath to req.DestPath.
func (a *AssemblyAPI) MoveFolder(ctx context.Context, req *MoveFolderRequest) error {
	if req == nil {
		return nilRequest("MoveFolder")
	}
	return a.transferFolder(ctx, req, "MoveFolder", "move", CopyFolderRequest(*req))
}

func (a *AssemblyAPI) transferFolder(ctx context.Context, req validatable, opName, verb string, r CopyFolderRequest) error {
	_, err := a.dispatch(ctx, req, operation{
		name:       opName,
		method:     http.MethodPost,
		path:       "/assembly/storage/folder/" + verb + "/{srcPath}",
		pathParams: []param{{"srcPath", r.SrcPath}},
		queryParams: []param{
			{"destPath", r.DestPath},
			{"srcStorageName", r.SrcStorageName},
			{"destStorageName", r.DestStorageName},
		},
	})
	return err
}

// GetFilesList lists req.Path. A missing folder yields (nil, nil).
func (a *AssemblyAPI) GetFilesList(ctx context.Context, req *GetFilesListRequest) (*FilesList, error) {
	if req == nil {
		return nil, nilRequest("GetFilesList")
	}
	res, err := a.dispatch(ctx, req, operation{
		name:           "GetFilesList",
		method:         http.MethodGet,
		path:           "/assembly/storage/folder/{path}",
		pathParams:     []param{{"path", req.Path}},
		queryParams:    []param{{"storageName", req.StorageName}},
		absorbNotFound: true,
	})
	if err != nil || !res.Found() {
		return nil, err
	}
	return decodeJSON[FilesList](res)
}

// UploadFile stores req.File at req.Path.
func (a *AssemblyAPI) UploadFile(ctx context.Context, req *UploadFileRequest) (*FilesUploadResult, error) {
	const opName = "UploadFile"
	if req == nil {
		return nil, nilRequest(opName)
	}
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Operation: opName, Err: err}
	}
	content, err := io.ReadAll(req.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	res, err := a.dispatch(ctx, req, operation{
		name:        opName,
		method:      http.MethodPut,
		path:        "/assembly/storage/file/{path}",
		pathParams:  []param{{"path", req.Path}},
		queryParams: []param{{"storageName", req.StorageName}},
		form: []FormField{
			BinaryField{Name: "File", FileName: path.Base(req.Path), Content: content},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeJSON[FilesUploadResult](res)
}

// DownloadFile streams req.Path. A missing file yields (nil, nil).
func (a *AssemblyAPI) DownloadFile(ctx context.Context, req *DownloadFileRequest) (io.ReadCloser, error) {
	if req == nil {
		return nil, nilRequest("DownloadFile")
	}
	return a.dispatchBinary(ctx, req, operation{
		name:       "DownloadFile",
		method:     http.MethodGet,
		path:       "/assembly/storage/file/{path}",
		pathParams: []param{{"path", req.Path}},
		queryParams: []param{
			{"storageName", req.StorageName},
			{"versionId", req.VersionID},
		},
		absorbNotFound: true,
	})
}

// CopyFile copies req.SrcPath to req.DestPath.
func (a *AssemblyAPI) CopyFile(ctx context.Context, req *CopyFileRequest) error {
	if req == nil {
		return nilRequest("CopyFile")
	}
	return a.transferFile(ctx, req, "CopyFile", "copy", *req)
}

// MoveFile moves req.SrcPath to req.DestPath.
func (a *AssemblyAPI) MoveFile(ctx context.Context, req *MoveFileRequest) error {
	if req == nil {
		return nilRequest("MoveFile")
	}
	return a.transferFile(ctx, req, "MoveFile", "move", CopyFileRequest(*req))
}

func (a *AssemblyAPI) transferFile(ctx context.Context, req validatable, opName, verb string, r CopyFileRequest) error {
	_, err := a.dispatch(ctx, req, operation{
		name:       opName,
		method:     http.MethodPost,
		path:       "/assembly/storage/file/" + verb + "/{srcPath}",
		pathParams: []param{{"srcPath", r.SrcPath}},
		queryParams: []param{
			{"destPath", r.DestPath},
			{"srcStorageName", r.SrcStorageName},
			{"destStorageName", r.DestStorageName},
			{"versionId", r.VersionID},
		},
	})
	return err
}

// DeleteFile removes req.Path.
func (a *AssemblyAPI) DeleteFile(ctx context.Context, req *DeleteFileRequest) error {
	if req == nil {
		return nilRequest("DeleteFile")
	}
	_, err := a.dispatch(ctx, req, operation{
		name:       "DeleteFile",
		method:     http.MethodDelete,
		path:       "/assembly/storage/file/{path}",
		pathParams: []param{{"path", req.Path}},
		queryParams: []param{
			{"storageName", req.StorageName},
			{"versionId", req.VersionID},
		},
	})
	return err
}

// ObjectExists reports whether req.Path exists.
func (a *AssemblyAPI) ObjectExists(ctx context.Context, req *ObjectExistsRequest) (*ObjectExist, error) {
	if req == nil {
		return nil, nilRequest("ObjectExists")
	}
	res, err := a.dispatch(ctx, req, operation{
		name:       "ObjectExists",
		method:     http.MethodGet,
		path:       "/assembly/storage/exist/{path}",
		pathParams: []param{{"path", req.Path}},
		queryParams: []param{
			{"storageName", req.StorageName},
			{"versionId", req.VersionID},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeJSON[ObjectExist](res)
}

// StorageExists reports whether req.StorageName is configured.
func (a *AssemblyAPI) StorageExists(ctx context.Context, req *StorageExistsRequest) (*StorageExist, error) {
	if req == nil {
		return nil, nilRequest("StorageExists")
	}
	res, err := a.dispatch(ctx, req, operation{
		name:       "StorageExists",
		method:     http.MethodGet,
		path:       "/assembly/storage/{storageName}/exist",
		pathParams: []param{{"storageName", req.StorageName}},
	})
	if err != nil {
		return nil, err
	}
	return decodeJSON[StorageExist](res)
}

// GetDiscUsage reports the storage consumption.
func (a *AssemblyAPI) GetDiscUsage(ctx context.Context, req *GetDiscUsageRequest) (*DiscUsage, error) {
	if req == nil {
		req = &GetDiscUsageRequest{}
	}
	res, err := a.dispatch(ctx, req, operation{
		name:        "GetDiscUsage",
		method:      http.MethodGet,
		path:        "/assembly/storage/disc",
		queryParams: []param{{"storageName", req.StorageName}},
	})
	if err != nil {
		return nil, err
	}
	return decodeJSON[DiscUsage](res)
}

// GetFileVersions lists the versions of req.Path. A missing file yields
// (nil, nil).
func (a *AssemblyAPI) GetFileVersions(ctx context.Context, req *GetFileVersionsRequest) (*FileVersions, error) {
	if req == nil {
		return nil, nilRequest("GetFileVersions")
	}
	res, err := a.dispatch(ctx, req, operation{
		name:           "GetFileVersions",
		method:         http.MethodGet,
		path:           "/assembly/storage/version/{path}",
		pathParams:     []param{{"path", req.Path}},
		queryParams:    []param{{"storageName", req.StorageName}},
		absorbNotFound: true,
	})
	if err != nil || !res.Found() {
		return nil, err
	}
	return decodeJSON[FileVersions](res)
}
