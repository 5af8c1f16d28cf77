package box

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// uploadField is the multipart field name the upload endpoints read the
// file content from.
const uploadField = "filename"

// UploadFile uploads the local file at path into parent. The response is
// the collection envelope containing the created file.
func (s *Session) UploadFile(ctx context.Context, path string, parent Identifier) (*Result, error) {
	if err := s.checkLocalFile(path); err != nil {
		return nil, err
	}

	ref, err := resolveParent(parent)
	if err != nil {
		return nil, err
	}

	name := uploadName(path)

	s.logger.Info("uploading file",
		slog.String("path", path),
		slog.String("name", name),
		slog.String("parent_id", ref.ID.String()),
	)

	return s.uploadFrom(ctx, path, name, "/files/content", nil, url.Values{
		"parent_id": {ref.ID.String()},
		"filename":  {name},
	})
}

// UploadFileVersion uploads the local file at path as a new version of
// fileID. etag must match the file's current etag or the service rejects
// the upload with ErrPreconditionFailed.
func (s *Session) UploadFileVersion(ctx context.Context, path string, fileID ID, etag int64) (*Result, error) {
	if err := s.checkLocalFile(path); err != nil {
		return nil, err
	}

	name := uploadName(path)

	s.logger.Info("uploading file version",
		slog.String("path", path),
		slog.String("file_id", fileID.String()),
		slog.Int64("etag", etag),
	)

	header := http.Header{}
	header.Set("If-Match", strconv.FormatInt(etag, 10))

	return s.uploadFrom(ctx, path, name, fmt.Sprintf("/files/%d/content", fileID), header, url.Values{
		"name": {name},
	})
}

// uploadFrom opens path, sends it as a multipart part and closes it on
// every return path.
func (s *Session) uploadFrom(
	ctx context.Context, path, name, apiPath string, header http.Header, fields url.Values,
) (*Result, error) {
	if !s.Authorized() {
		return nil, ErrNotAuthorized
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("box: opening %s: %w", path, err)
	}
	defer f.Close()

	return s.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    apiPath,
		BaseURL: s.uploadURL,
		Header:  header,
		Form:    fields,
		Files:   []FilePart{{Field: uploadField, Filename: name, Content: f}},
	})
}

// checkLocalFile verifies path names an existing regular file.
func (s *Session) checkLocalFile(path string) error {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("box: checking %s: %w", path, err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	isDir, err := afero.IsDir(s.fs, path)
	if err != nil {
		return fmt.Errorf("box: checking %s: %w", path, err)
	}

	if isDir {
		return fmt.Errorf("%w: %s is a directory", ErrValidation, path)
	}

	return nil
}

// uploadName is the remote name for a local path: its base name in NFC,
// so names typed on macOS (NFD) match names created elsewhere.
func uploadName(path string) string {
	return norm.NFC.String(filepath.Base(path))
}

// DownloadFile fetches the current content of fileID. Use Result.Bytes for
// the content; on failure the Result carries the JSON error body.
func (s *Session) DownloadFile(ctx context.Context, fileID ID) (*Result, error) {
	s.logger.Info("downloading file", slog.String("file_id", fileID.String()))

	return s.Do(ctx, Request{Path: fmt.Sprintf("/files/%d/content", fileID)})
}

// DownloadFileVersion fetches the content of a specific version of fileID.
func (s *Session) DownloadFileVersion(ctx context.Context, fileID, versionID ID) (*Result, error) {
	s.logger.Info("downloading file version",
		slog.String("file_id", fileID.String()),
		slog.String("version_id", versionID.String()),
	)

	return s.Do(ctx, Request{
		Path:  fmt.Sprintf("/files/%d/content", fileID),
		Query: url.Values{"version": {versionID.String()}},
	})
}

// FileInfo fetches a file's metadata.
func (s *Session) FileInfo(ctx context.Context, fileID ID) (*Result, error) {
	s.logger.Debug("getting file", slog.String("file_id", fileID.String()))

	return s.Do(ctx, Request{Path: fmt.Sprintf("/files/%d", fileID)})
}

// ViewFileVersions is not supported by this client and always fails with
// ErrNotImplemented.
func (s *Session) ViewFileVersions(_ context.Context, _ ID) (*Result, error) {
	return nil, notImplemented("view file versions")
}

// UpdateFileInformation is not supported by this client and always fails
// with ErrNotImplemented.
func (s *Session) UpdateFileInformation(_ context.Context, _ ID) (*Result, error) {
	return nil, notImplemented("update file information")
}

// DeleteFile deletes fileID regardless of its current version. The
// service answers with an empty body on success.
func (s *Session) DeleteFile(ctx context.Context, fileID ID) (*Result, error) {
	s.logger.Info("deleting file", slog.String("file_id", fileID.String()))

	return s.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/files/%d", fileID),
	})
}

// DeleteFileIfMatch deletes fileID only if its current etag equals etag.
func (s *Session) DeleteFileIfMatch(ctx context.Context, fileID ID, etag int64) (*Result, error) {
	s.logger.Info("deleting file",
		slog.String("file_id", fileID.String()),
		slog.Int64("etag", etag),
	)

	header := http.Header{}
	header.Set("If-Match", strconv.FormatInt(etag, 10))

	return s.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/files/%d", fileID),
		Header: header,
	})
}
