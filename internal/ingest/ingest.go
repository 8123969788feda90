// Package ingest resolves a repository source (remote URL or local path) to a
// local directory tree.
package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/models"
)

// Ingestor clones remote repositories into a local cache directory. A repo
// that is already present in the cache is reused rather than re-cloned.
type Ingestor struct {
	cacheDir string
	logger   *zap.Logger
}

// NewIngestor creates an ingestor that clones under cacheDir.
func NewIngestor(cacheDir string, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{cacheDir: cacheDir, logger: logger}
}

// RepoNameFromURL derives the repository name from a git URL:
// "https://github.com/acme/widget.git" -> "widget".
func RepoNameFromURL(url string) string {
	name := strings.TrimSpace(url)
	name = strings.TrimSuffix(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// Resolve returns a local root for source. A source that exists on disk is
// used directly; anything else is treated as a git URL and cloned. Clone
// failures terminate the analysis with a models.CloneError.
func (g *Ingestor) Resolve(ctx context.Context, source string) (string, error) {
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		abs, err := filepath.Abs(source)
		if err != nil {
			return "", fmt.Errorf("absolute path: %w", err)
		}
		return abs, nil
	}
	return g.Clone(ctx, source)
}

// Clone clones url into the cache directory and returns the checkout path.
// An existing checkout is reused.
func (g *Ingestor) Clone(ctx context.Context, url string) (string, error) {
	name := RepoNameFromURL(url)
	if name == "" {
		return "", &models.CloneError{URL: url, Err: fmt.Errorf("cannot derive repo name")}
	}
	target := filepath.Join(g.cacheDir, name)

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		g.logger.Debug("reusing cached clone", zap.String("url", url), zap.String("path", target))
		return target, nil
	}

	if err := os.MkdirAll(g.cacheDir, 0755); err != nil {
		return "", &models.CloneError{URL: url, Err: fmt.Errorf("create cache dir: %w", err)}
	}

	g.logger.Info("cloning repository", zap.String("url", url), zap.String("path", target))
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, target)
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(target)
		return "", &models.CloneError{URL: url, Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))}
	}
	return target, nil
}
