// internal/storage/file_store.go
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/logger"
)

// FileStore keeps at most one attachment per task under a single directory.
// Files are named task_<id>_<original name>.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Uploads are written under this prefix and renamed into place when complete.
const tempPrefix = ".upload-"

func filePrefix(taskID int64) string {
	return fmt.Sprintf("task_%d_", taskID)
}

// SaveFile stores content as the attachment of taskID, replacing any
// previous attachment. It returns the path of the stored file.
func (s *FileStore) SaveFile(ctx context.Context, taskID int64, originalName string, content io.Reader) (string, error) {
	name := sanitizeName(originalName)
	if name == "" {
		return "", apperrors.NewValidationError(apperrors.OriginEntity, "file name must not be empty")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.NewStorageError("create upload directory", err)
	}

	tmpPath := filepath.Join(s.dir, tempPrefix+uuid.NewString())
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperrors.NewStorageError("create temporary file", err)
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return "", apperrors.NewStorageError("write file", err)
	}
	if err := tmp.Close(); err != nil {
		return "", apperrors.NewStorageError("write file", err)
	}

	target := filepath.Join(s.dir, filePrefix(taskID)+name)
	if err := os.Rename(tmpPath, target); err != nil {
		return "", apperrors.NewStorageError("move file into place", err)
	}

	previous, err := s.matches(taskID)
	if err != nil {
		return "", err
	}
	for _, p := range previous {
		if p == target {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn(ctx, "failed to remove previous attachment", "path", p, "error", err)
		}
	}

	logger.Info(ctx, "stored attachment", "task_id", taskID, "path", target)
	return target, nil
}

// LoadFile returns the path of the attachment of taskID. When several
// candidates exist the most recently modified wins.
func (s *FileStore) LoadFile(ctx context.Context, taskID int64) (string, error) {
	paths, err := s.matches(taskID)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", apperrors.NewNotFoundError("file for task", taskID)
	}

	var (
		newest string
		info   os.FileInfo
	)
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info == nil || fi.ModTime().After(info.ModTime()) {
			newest, info = p, fi
		}
	}
	if info == nil {
		return "", apperrors.NewStorageError("stat file", fmt.Errorf("no readable file for task %d", taskID))
	}

	f, err := os.Open(newest)
	if err != nil {
		return "", apperrors.NewStorageError("open file", err)
	}
	f.Close()

	logger.Debug(ctx, "resolved attachment", "task_id", taskID, "path", newest)
	return newest, nil
}

// DeleteFiles removes every attachment of taskID.
func (s *FileStore) DeleteFiles(ctx context.Context, taskID int64) error {
	paths, err := s.matches(taskID)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return apperrors.NewStorageError("remove file", err)
		}
	}
	return nil
}

// OriginalName strips the task prefix from a stored file path.
func OriginalName(taskID int64, path string) string {
	return strings.TrimPrefix(filepath.Base(path), filePrefix(taskID))
}

func (s *FileStore) matches(taskID int64) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("list upload directory", err)
	}

	prefix := filePrefix(taskID)
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), prefix) {
			out = append(out, filepath.Join(s.dir, e.Name()))
		}
	}
	return out, nil
}

// sanitizeName keeps only the base name so uploads cannot escape the directory.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
