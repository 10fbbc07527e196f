package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"checkstats/internal/adapters/artifact"
	"checkstats/internal/platform/errors"
	analyzedom "checkstats/internal/services/analyze/domain"
	"checkstats/internal/services/api/runs/domain"
)

// Upload streams a raw export to a fresh run directory, analyzes it, and
// switches the active run. The active run only changes after a successful
// analysis
func (s *Svc) Upload(ctx context.Context, body io.Reader) (domain.UploadResult, error) {
	if s.analyzer == nil {
		return domain.UploadResult{}, errors.Unavailablef("uploads are disabled")
	}

	newRunDir, err := s.allocateRunDir()
	if err != nil {
		return domain.UploadResult{}, err
	}
	rawDir := filepath.Join(newRunDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return domain.UploadResult{}, errors.Wrap(err, errors.ErrorCodeUnknown, "create upload directory")
	}
	uploadPath := filepath.Join(rawDir, "upload.json")

	written, err := streamToFile(body, uploadPath, s.maxUploadBytes)
	if err != nil {
		return domain.UploadResult{}, err
	}
	if written <= 0 {
		return domain.UploadResult{}, errors.InvalidArgf("empty upload")
	}

	if _, err := s.analyzer.Analyze(ctx, analyzedom.AnalyzeInput{
		InputPath: uploadPath,
		OutDir:    newRunDir,
		Argv:      []string{"checkstats", "serve", "--upload"},
	}); err != nil {
		return domain.UploadResult{}, err
	}

	s.setActiveRunDir(newRunDir)
	s.log.Info().Str("run_dir", newRunDir).Int64("bytes", written).Msg("upload analyzed")

	present, missing := artifact.Presence(newRunDir)
	return domain.UploadResult{
		RunDir:           newRunDir,
		RunID:            filepath.Base(newRunDir),
		BytesWritten:     written,
		ArtifactsPresent: present,
		MissingFiles:     missing,
	}, nil
}

// allocateRunDir creates a unique UTC-stamped directory under the uploads root
func (s *Svc) allocateRunDir() (string, error) {
	if err := os.MkdirAll(s.uploadsRoot, 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrorCodeUnknown, "create uploads root")
	}
	stamp := time.Now().UTC().Format("20060102-150405")
	for i := 0; i < 1000; i++ {
		name := stamp
		if i > 0 {
			name = fmt.Sprintf("%s-%d", stamp, i)
		}
		candidate := filepath.Join(s.uploadsRoot, name)
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", errors.Wrap(err, errors.ErrorCodeUnknown, "allocate upload run directory")
		}
	}
	return "", errors.Internalf("failed to allocate upload run directory")
}

func streamToFile(body io.Reader, path string, maxBytes int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorCodeUnknown, "create upload file")
	}
	defer f.Close()

	src := body
	if maxBytes > 0 {
		src = io.LimitReader(body, maxBytes+1)
	}
	written, err := io.Copy(f, src)
	if err != nil {
		return written, errors.Wrap(err, errors.ErrorCodeUnknown, "write upload body")
	}
	if maxBytes > 0 && written > maxBytes {
		return written, errors.InvalidArgf("upload exceeds %d bytes", maxBytes)
	}
	return written, nil
}
