package s0_data

import (
	"fmt"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/database"
	"github.com/wonny/conviction-radar/pkg/httputil"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// UniverseDeps are the collaborators a universe source may need
type UniverseDeps struct {
	HTTP   *httputil.Client
	DB     *database.DB
	Logger *logger.Logger
}

// NewUniverse builds the universe source named by cfg.Batch.UniverseSource
func NewUniverse(cfg *config.Config, deps UniverseDeps) (contracts.UniverseSource, error) {
	switch cfg.Batch.UniverseSource {
	case config.UniverseDefault, "":
		return DefaultUniverse{}, nil
	case config.UniverseFile:
		return NewFileUniverse(cfg.Batch.UniverseFile), nil
	case config.UniverseSP500:
		if deps.HTTP == nil {
			return nil, fmt.Errorf("universe %q needs an http client", cfg.Batch.UniverseSource)
		}
		return NewSP500Universe(deps.HTTP, cfg.Batch.SP500URL, deps.Logger), nil
	case config.UniverseWatchlist:
		if deps.DB == nil {
			return nil, fmt.Errorf("universe %q needs a database", cfg.Batch.UniverseSource)
		}
		return NewWatchlistRepository(deps.DB.Pool), nil
	default:
		return nil, fmt.Errorf("unknown universe source %q", cfg.Batch.UniverseSource)
	}
}
