package domain

import "context"

// WhiskyRepository описывает требования к хранилищу каталога.
// Каждая операция самостоятельно получает и освобождает одно соединение.
type WhiskyRepository interface {
	// List возвращает все записи в порядке, определяемом хранилищем.
	List(ctx context.Context) ([]Whisky, error)
	// Insert сохраняет name/origin и возвращает запись с назначенным ID (входной ID игнорируется).
	Insert(ctx context.Context, w Whisky) (Whisky, error)
	// Fetch возвращает запись по ID или ErrWhiskyNotFound.
	Fetch(ctx context.Context, id int64) (Whisky, error)
	// Update перезаписывает name/origin; ErrWhiskyNotFound, если строка не затронута.
	Update(ctx context.Context, id int64, w Whisky) (Whisky, error)
	// Delete удаляет запись; отсутствие строки не считается ошибкой.
	Delete(ctx context.Context, id int64) error
	// Count возвращает количество записей.
	Count(ctx context.Context) (int, error)
}

// SchemaManager создаёт таблицу каталога, если её ещё нет.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
}
