package root

import (
	"context"
	"database/sql"

	"github.com/datefujinari/giftytask/internal/config"
	"github.com/datefujinari/giftytask/internal/engine"
	"github.com/datefujinari/giftytask/internal/storage"
)

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, func(), error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = storage.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := engine.NewService(db, engine.Config{
		DailyGoal:         cfg.DailyGoal,
		ActiveDaysWindow:  cfg.ActiveDaysWindow,
		HeatmapWindowDays: cfg.HeatmapWindowDays,
		DefaultRewardURL:  cfg.DefaultRewardURL,
	})
	return svc, cleanup, nil
}
