package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Folder categories provisioned for every linked user.
const (
	RootFolderName    = "Hina Bot Uploads"
	CategoryImages    = "Images"
	CategoryDocuments = "Documents"
	CategoryArchives  = "Archives"
	CategoryOthers    = "Others"
)

var categories = []string{CategoryImages, CategoryDocuments, CategoryArchives, CategoryOthers}

// FolderCreator is the slice of the storage adapter provisioning needs.
type FolderCreator interface {
	CreateFolder(ctx context.Context, userID, name, parentID string) (string, error)
}

// State tracks per-user derived resources. The cache is the idempotency
// source of truth within a process lifetime: the remote API offers no
// find-or-create, so a restart may recreate folders. Accepted limitation.
type State struct {
	creator FolderCreator
	logger  *slog.Logger

	mu      sync.Mutex
	folders map[string]map[string]string
}

func NewState(creator FolderCreator, logger *slog.Logger) *State {
	return &State{
		creator: creator,
		logger:  logger,
		folders: map[string]map[string]string{},
	}
}

// Folders returns the cached category→folder-id mapping, provisioning the
// folder tree on first authenticated use.
func (s *State) Folders(ctx context.Context, userID string) (map[string]string, error) {
	s.mu.Lock()
	cached, ok := s.folders[userID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}
	return s.Provision(ctx, userID)
}

// Provision creates the root folder and one subfolder per category, then
// caches the ids. Safe to call again; an existing cache short-circuits.
func (s *State) Provision(ctx context.Context, userID string) (map[string]string, error) {
	s.mu.Lock()
	if cached, ok := s.folders[userID]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	rootID, err := s.creator.CreateFolder(ctx, userID, RootFolderName, "")
	if err != nil {
		return nil, fmt.Errorf("create root folder: %w", err)
	}
	mapping := map[string]string{RootFolderName: rootID}
	for _, category := range categories {
		folderID, err := s.creator.CreateFolder(ctx, userID, category, rootID)
		if err != nil {
			return nil, fmt.Errorf("create %s folder: %w", category, err)
		}
		mapping[category] = folderID
	}

	s.mu.Lock()
	s.folders[userID] = mapping
	s.mu.Unlock()
	s.logger.Info("provisioned folder structure", "user_id", userID)
	return mapping, nil
}

// Forget drops the cached resources, typically on unlink.
func (s *State) Forget(userID string) {
	s.mu.Lock()
	delete(s.folders, userID)
	s.mu.Unlock()
}

// Categorize maps a MIME type onto a folder category. Rules are ordered:
// images first, then document-ish types, then archives, else Others.
func Categorize(mimeType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(normalized, "image/"):
		return CategoryImages
	case strings.Contains(normalized, "document"),
		strings.Contains(normalized, "pdf"),
		strings.Contains(normalized, "text/"):
		return CategoryDocuments
	case strings.Contains(normalized, "zip"),
		strings.Contains(normalized, "archive"),
		strings.Contains(normalized, "compressed"):
		return CategoryArchives
	default:
		return CategoryOthers
	}
}
