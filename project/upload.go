package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/to404hanga/pkg404/logger"
	"github.com/unilatex/latex_api_server/workspace"
)

type UploadResult struct {
	Filename     string  `json:"filename"`
	Path         string  `json:"path"`
	AbsolutePath string  `json:"absolute_path"`
	Size         int64   `json:"size"`
	SizeMB       float64 `json:"size_mb"`
	UploadedAt   string  `json:"uploaded_at"`
}

// SaveUpload writes an uploaded file under project_path/subdirectory. The
// filename is reduced to a safe basename first, so traversal names like
// "../../etc/passwd" land inside the target directory. The write completes
// fully before the result is produced.
func (s *Service) SaveUpload(ctx context.Context, projectPath, subdirectory, filename string, src io.Reader) (*UploadResult, error) {
	dir, err := s.ws.Resolve(projectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if subdirectory != "" {
		dir, err = s.ws.Resolve(filepath.ToSlash(filepath.Join(projectPath, subdirectory)))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	safe := workspace.SanitizeFilename(filename)
	dest := filepath.Join(dir, safe)
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("write upload: %w", err)
	}

	s.log.InfoContext(ctx, "file uploaded",
		logger.String("path", s.ws.Rel(dest)),
		logger.String("size", fmt.Sprintf("%d", n)),
	)
	return &UploadResult{
		Filename:     safe,
		Path:         s.ws.Rel(dest),
		AbsolutePath: dest,
		Size:         n,
		SizeMB:       float64(n) / (1024 * 1024),
		UploadedAt:   time.Now().Format(time.RFC3339),
	}, nil
}
