// Package app builds the tracker's stores once and hands them out as a
// single context object
package app

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/initiative-tracker/internal/config"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	dicesvc "github.com/KirkDiggler/initiative-tracker/internal/orchestrators/dice"
	"github.com/KirkDiggler/initiative-tracker/internal/redis"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/character"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/encounter"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/settings"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/vehicle"
)

// Config holds what New needs to assemble an App
type Config struct {
	Storage *config.Config
	// Roller defaults to dice.DefaultRoller
	Roller dice.Roller
}

// Validate ensures the storage configuration is usable
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.Storage == nil {
		return errors.NewValidationBuilder().RequiredField("Storage").Build()
	}
	return c.Storage.Validate()
}

// App owns one instance of every store
type App struct {
	Repository blob.Repository
	Characters *character.Store
	Vehicles   *vehicle.Store
	Encounter  *encounter.Store
	Settings   *settings.Store
	Dice       dicesvc.Service

	closeBackend func() error
}

// New opens the configured backend and hydrates every store from it
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	repo, closeBackend, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}

	a := &App{
		Repository:   repo,
		closeBackend: closeBackend,
	}
	if err := a.buildStores(cfg); err != nil {
		_ = a.Close()
		return nil, err
	}

	slog.Debug("tracker ready",
		"backend", string(cfg.Storage.Backend),
		"characters", len(a.Characters.Get()),
		"vehicles", len(a.Vehicles.Get()))

	return a, nil
}

func (a *App) buildStores(cfg *Config) error {
	timeout := cfg.Storage.WriteTimeout

	var err error
	a.Characters, err = character.New(&character.Config{
		Repository:   a.Repository,
		WriteTimeout: timeout,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create character store")
	}

	a.Vehicles, err = vehicle.New(&vehicle.Config{
		Repository:   a.Repository,
		WriteTimeout: timeout,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create vehicle store")
	}

	a.Settings, err = settings.New(&settings.Config{
		Repository:   a.Repository,
		WriteTimeout: timeout,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create settings store")
	}

	a.Encounter, err = encounter.New(&encounter.Config{
		Characters: a.Characters,
		Roller:     cfg.Roller,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create encounter store")
	}

	a.Dice, err = dicesvc.NewOrchestrator(&dicesvc.Config{
		Characters: a.Characters,
		Roller:     cfg.Roller,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create dice orchestrator")
	}

	return nil
}

// Close detaches every store and releases the backend. It is safe to call
// on a partially built App.
func (a *App) Close() error {
	if a.Encounter != nil {
		a.Encounter.Close()
	}
	if a.Settings != nil {
		a.Settings.Close()
	}
	if a.Vehicles != nil {
		a.Vehicles.Close()
	}
	if a.Characters != nil {
		a.Characters.Close()
	}

	if a.closeBackend == nil {
		return nil
	}
	closeBackend := a.closeBackend
	a.closeBackend = nil
	return closeBackend()
}

func openBackend(cfg *config.Config) (blob.Repository, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return blob.NewInMemory(), nil, nil

	case config.BackendSQLite:
		repo, err := blob.NewSQLite(&blob.SQLiteConfig{Path: cfg.SQLitePath})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open sqlite at %s", cfg.SQLitePath)
		}
		return repo, repo.Close, nil

	case config.BackendRedis:
		client, err := redis.NewClient(cfg.RedisAddr, &redis.Options{
			ReadTimeout:  cfg.WriteTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create redis client")
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, errors.WrapWithCode(err, errors.CodeUnavailable, "redis is unreachable at "+cfg.RedisAddr)
		}

		repo, err := blob.NewRedis(&blob.RedisConfig{
			Client:    client,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return repo, client.Close, nil

	default:
		return nil, nil, errors.InvalidArgumentf("unknown storage backend %q", cfg.Backend)
	}
}
