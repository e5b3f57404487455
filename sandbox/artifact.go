package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ArtifactPrefix and ArtifactSuffix bracket every program artifact name.
const (
	ArtifactPrefix = "questbox-"
	ArtifactSuffix = ".py"
)

// artifactName returns a collision-free file name for one execution.
func artifactName(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%d-%s%s", ArtifactPrefix, now.UnixNano(), id, ArtifactSuffix)
}

// artifactGlob matches the artifacts in dir.
func artifactGlob(dir string) string {
	return filepath.Join(dir, ArtifactPrefix+"*"+ArtifactSuffix)
}

// scratchDir resolves the configured scratch directory.
func scratchDir(dir string) string {
	if dir == "" {
		return os.TempDir()
	}
	return dir
}

// writeArtifact stores program in dir and returns a function that removes
// it again. Removal failures are logged, never returned.
func writeArtifact(fs FileSystem, logger *zap.Logger, dir, program string, perm os.FileMode) (string, func(), error) {
	if err := fs.MkdirAll(dir, DirPermission); err != nil {
		return "", nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}

	path := filepath.Join(dir, artifactName(time.Now()))
	if err := fs.WriteFile(path, []byte(program), perm); err != nil {
		// A partial write may have left a file behind.
		_ = fs.Remove(path)
		return "", nil, fmt.Errorf("failed to write program artifact: %w", err)
	}

	cleanup := func() {
		if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Error("failed to remove program artifact", zap.String("path", path), zap.Error(err))
		}
	}
	return path, cleanup, nil
}
