package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"publishingCore/internal/config"
	"publishingCore/internal/database"
	"publishingCore/internal/logger"
	"publishingCore/internal/repository"
	"publishingCore/internal/service"
)

type App struct {
	Config   *config.Config
	Log      *logger.LogData
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
}

// New connects to the database and wires repositories and services.
func New(cfg *config.Config) (*App, error) {
	logData, err := logger.New().
		FromPath(cfg.Log.File).
		WithLevel(cfg.Log.Level).
		Make()
	if err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}
	logConfigWarnings(logData.Logger, cfg)

	// connection DB
	db, err := database.ConnectDB(cfg, logData.Logger)
	if err != nil {
		logData.Close()
		return nil, err
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, cfg, logData.Logger)

	return &App{
		Config:   cfg,
		Log:      logData,
		DB:       db,
		Repo:     repo,
		Services: services,
	}, nil
}

func logConfigWarnings(log zerolog.Logger, cfg *config.Config) {
	for _, warning := range cfg.Warnings {
		log.Warn().Str("op", "config.LoadConfig").Msg(warning)
	}
}

func (a *App) Close() {
	if err := a.DB.CloseDB(); err != nil {
		a.Log.Logger.Error().Err(err).Msg("could not close database")
	}
	a.Log.Close()
}
