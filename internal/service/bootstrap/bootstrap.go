// Package bootstrap готовит хранилище каталога к работе при старте сервиса:
// создаёт таблицу и один раз заполняет её начальными записями.
package bootstrap

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
)

// Result описывает итог подготовки хранилища.
type Result struct {
	// Seeded равен true, если таблица была пустой и в неё записаны начальные строки.
	Seeded bool
	// Created содержит вставленные при заполнении записи в порядке вставки.
	Created []domain.Whisky
}

// Run выполняет последовательно: создание схемы, подсчёт строк и, если таблица пуста,
// вставку SeedWhiskies в фиксированном порядке. Первая же ошибка прерывает работу.
// Защиты от параллельного запуска нет: предполагается один запускающий процесс.
func Run(ctx context.Context, schema domain.SchemaManager, repo domain.WhiskyRepository, logger *log.Entry) (Result, error) {
	if logger == nil {
		logger = log.WithField("component", "bootstrap")
	}

	if err := schema.EnsureSchema(ctx); err != nil {
		return Result{}, fmt.Errorf("ensure schema: %w", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count whiskies: %w", err)
	}
	if count > 0 {
		logger.WithField("rows", count).Info("catalog already populated, skipping seed")
		return Result{}, nil
	}

	result := Result{Seeded: true}
	for _, seed := range domain.SeedWhiskies() {
		created, err := repo.Insert(ctx, seed)
		if err != nil {
			return Result{}, fmt.Errorf("seed %q: %w", seed.Name, err)
		}
		result.Created = append(result.Created, created)
	}

	logger.WithField("rows", len(result.Created)).Info("catalog seeded")
	return result, nil
}
