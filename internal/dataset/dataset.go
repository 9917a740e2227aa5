// Package dataset selects the configured source of grade records.
package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/collegegrades/grades-api/internal/config"
	"github.com/collegegrades/grades-api/internal/engine"
	"github.com/collegegrades/grades-api/internal/firebase"
	"github.com/collegegrades/grades-api/internal/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLoader returns the loader for cfg.Source. The closer releases any client
// the loader holds and must be called once loading is finished.
func NewLoader(ctx context.Context, cfg *config.Config) (engine.Loader, io.Closer, error) {
	switch cfg.Source {
	case config.SourceSQLite:
		return sqlite.NewLoader(cfg.SQLite.Path, cfg.SQLite.Table), nopCloser{}, nil
	case config.SourceFirestore:
		db, err := firebase.Connect(ctx, cfg.Firestore.CredentialsFile, cfg.Firestore.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return firebase.NewGradeLoader(db, cfg.Firestore.Collection), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown grade source %q", cfg.Source)
	}
}

// LoadStore builds the in-memory store from the configured source. Every
// failure, including connecting to the source, is an engine.StartupError.
func LoadStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine.Store, error) {
	loader, closer, err := NewLoader(ctx, cfg)
	if err != nil {
		return nil, &engine.StartupError{Source: cfg.Source, Err: err}
	}
	defer closer.Close()

	return engine.Load(ctx, loader, logger)
}
