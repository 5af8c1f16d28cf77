package box

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

type createFolderRequest struct {
	Name   string    `json:"name"`
	Parent ObjectRef `json:"parent"`
}

// CreateFolder creates a folder named name inside parent.
func (s *Session) CreateFolder(ctx context.Context, name string, parent Identifier) (*Result, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: folder name required", ErrValidation)
	}

	ref, err := resolveParent(parent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("creating folder",
		slog.String("name", name),
		slog.String("parent_id", ref.ID.String()),
	)

	return s.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/folders",
		JSON:   createFolderRequest{Name: name, Parent: ref},
	})
}

// FolderInfo fetches a folder's metadata.
func (s *Session) FolderInfo(ctx context.Context, folderID ID) (*Result, error) {
	s.logger.Debug("getting folder", slog.String("folder_id", folderID.String()))

	return s.Do(ctx, Request{Path: fmt.Sprintf("/folders/%d", folderID)})
}

// resolveParent normalizes a parent identifier. A nil parent, including a
// typed nil pointer, is rejected rather than defaulting to the root folder.
func resolveParent(parent Identifier) (ObjectRef, error) {
	if isNilIdentifier(parent) {
		return ObjectRef{}, fmt.Errorf("%w: parent identifier required", ErrTypeMismatch)
	}

	ref, err := parent.ObjectRef()
	if err != nil {
		return ObjectRef{}, fmt.Errorf("resolving parent: %w", err)
	}

	return ref, nil
}
