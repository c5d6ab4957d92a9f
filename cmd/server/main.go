package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unoarena/server/internal/cache"
	"github.com/unoarena/server/internal/config"
	"github.com/unoarena/server/internal/database"
	"github.com/unoarena/server/internal/game"
	"github.com/unoarena/server/internal/room"
	"github.com/unoarena/server/internal/server"
)

func main() {
	cfg := config.Load()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx := context.Background()

	var users game.UserStore
	if cfg.DatabaseURL != "" {
		store, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logrus.WithError(err).Fatal("database connection failed")
		}
		defer store.Close()
		users = store
		logrus.Info("database connected")
	} else {
		logrus.Warn("no DATABASE_URL set, running without persistence")
	}

	if cfg.RedisAddr != "" {
		if err := cache.Init(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
			logrus.WithError(err).Warn("redis unavailable, action history disabled")
		} else {
			logrus.Info("redis connected")
		}
	}

	rooms := room.NewManager(users)
	rooms.TurnDuration = time.Duration(cfg.TurnTimerSec) * time.Second

	retention := time.Duration(cfg.RoomRetentionMin) * time.Minute
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rooms.Reap(retention)
		}
	}()

	srv := server.New(rooms, users)
	addr := ":" + cfg.Port
	logrus.WithField("addr", addr).Info("listening")
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
