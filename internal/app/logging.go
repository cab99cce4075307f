package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConfigureLogging настраивает logger: уровень, формат и, если задан log.file,
// дублирование в файл с ротацией. Возвращает io.Closer для файла (или nil).
func ConfigureLogging(logger *log.Logger, cfg LogConfig, stdout io.Writer) (io.Closer, error) {
	level := log.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	if stdout == nil {
		stdout = os.Stdout
	}
	if strings.TrimSpace(cfg.File) == "" {
		logger.SetOutput(stdout)
		return nil, nil
	}

	if dir := filepath.Dir(cfg.File); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	logger.SetOutput(io.MultiWriter(stdout, fileWriter))
	return fileWriter, nil
}
