package dataset

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ziplookup/internal/fetcher"
)

// CacheConfig describes where the dataset lives remotely and on disk.
type CacheConfig struct {
	// Dir is the cache directory for this dataset. Created on demand.
	Dir string

	// ArchiveURL is the HTTPS location of the source zip archive.
	ArchiveURL string

	// ArchiveName is the filename the downloaded archive is saved under.
	ArchiveName string

	// FlatFileName is the single expected entry inside the archive, and the
	// name of the extracted file in Dir.
	FlatFileName string
}

// DefaultCacheDir returns the platform cache directory for the US GeoNames
// dataset, e.g. ~/.cache/ziplookup/geonames_us on Linux.
func DefaultCacheDir() (string, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return "", eris.Wrap(err, "dataset: resolve user cache dir")
	}
	return filepath.Join(root, "ziplookup", "geonames_us"), nil
}

// Manager keeps a local copy of the dataset archive and its extracted flat
// file, refreshing them when the flat file grows older than a freshness
// threshold. Concurrent refreshes are not coordinated; the archive is fully
// buffered before any write and the flat file is written in one complete
// write, so the last writer wins with no partial state.
type Manager struct {
	cfg     CacheConfig
	fetcher fetcher.Fetcher
}

// NewManager creates a Manager over the given cache location and fetcher.
func NewManager(cfg CacheConfig, f fetcher.Fetcher) *Manager {
	return &Manager{cfg: cfg, fetcher: f}
}

// FlatFilePath returns the path the extracted flat file lives at, whether or
// not it currently exists.
func (m *Manager) FlatFilePath() string {
	return filepath.Join(m.cfg.Dir, m.cfg.FlatFileName)
}

// Ensure returns the path to a flat file no older than maxAgeDays, downloading
// and unpacking the source archive when the cached copy is missing or stale.
// The fresh-cache path makes no network call. Failures wrap
// ErrDatasetUnavailable; there is no fallback to a stale copy once a refresh
// has been decided.
func (m *Manager) Ensure(ctx context.Context, maxAgeDays int) (string, error) {
	log := zap.L().With(zap.String("component", "dataset.cache"))

	flatPath := m.FlatFilePath()
	if info, err := os.Stat(flatPath); err == nil {
		age := time.Since(info.ModTime())
		if age < time.Duration(maxAgeDays)*24*time.Hour {
			log.Debug("dataset cache fresh",
				zap.String("path", flatPath),
				zap.Duration("age", age),
			)
			return flatPath, nil
		}
		log.Info("dataset cache stale, refreshing",
			zap.String("path", flatPath),
			zap.Duration("age", age),
		)
	} else {
		log.Info("dataset cache missing, downloading", zap.String("path", flatPath))
	}

	if err := os.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return "", eris.Wrapf(ErrDatasetUnavailable, "dataset: create cache dir: %v", err)
	}

	data, err := m.fetcher.DownloadBytes(ctx, m.cfg.ArchiveURL)
	if err != nil {
		return "", eris.Wrapf(ErrDatasetUnavailable, "dataset: fetch archive: %v", err)
	}

	archivePath := filepath.Join(m.cfg.Dir, m.cfg.ArchiveName)
	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		return "", eris.Wrapf(ErrDatasetUnavailable, "dataset: write archive: %v", err)
	}

	flat, err := fetcher.ReadZIPEntry(data, m.cfg.FlatFileName)
	if err != nil {
		return "", eris.Wrapf(ErrDatasetUnavailable, "dataset: extract %s: %v", m.cfg.FlatFileName, err)
	}

	if err := os.WriteFile(flatPath, flat, 0o644); err != nil {
		return "", eris.Wrapf(ErrDatasetUnavailable, "dataset: write flat file: %v", err)
	}

	log.Info("dataset refreshed",
		zap.String("path", flatPath),
		zap.Int("archive_bytes", len(data)),
		zap.Int("flat_bytes", len(flat)),
	)
	return flatPath, nil
}
