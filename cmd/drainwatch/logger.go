package main

import (
	"github.com/draintech/drainwatch/internal/config"
	"github.com/draintech/drainwatch/internal/logging"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName)
}
