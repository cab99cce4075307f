package sqldb

// Dialect содержит тексты запросов каталога для конкретной СУБД.
// Запросы отличаются только синтаксисом плейсхолдеров.
type Dialect struct {
	Name string

	list   string
	insert string
	fetch  string
	update string
	delete string
	count  string

	code func(error) string
}

// WithErrorCode возвращает копию диалекта, извлекающую код ошибки драйвера для QueryError.
func (d Dialect) WithErrorCode(fn func(error) string) Dialect {
	d.code = fn
	return d
}

func (d Dialect) errorCode(err error) string {
	if d.code == nil || err == nil {
		return ""
	}
	return d.code(err)
}

// PostgresDialect использует нумерованные плейсхолдеры $N.
var PostgresDialect = Dialect{
	Name:   "postgres",
	list:   `SELECT id, name, origin FROM whisky`,
	insert: `INSERT INTO whisky (name, origin) VALUES ($1, $2) RETURNING id`,
	fetch:  `SELECT id, name, origin FROM whisky WHERE id = $1`,
	update: `UPDATE whisky SET name = $1, origin = $2 WHERE id = $3`,
	delete: `DELETE FROM whisky WHERE id = $1`,
	count:  `SELECT COUNT(*) FROM whisky`,
}

// SQLiteDialect использует позиционные плейсхолдеры ?.
var SQLiteDialect = Dialect{
	Name:   "sqlite",
	list:   `SELECT id, name, origin FROM whisky`,
	insert: `INSERT INTO whisky (name, origin) VALUES (?, ?) RETURNING id`,
	fetch:  `SELECT id, name, origin FROM whisky WHERE id = ?`,
	update: `UPDATE whisky SET name = ?, origin = ? WHERE id = ?`,
	delete: `DELETE FROM whisky WHERE id = ?`,
	count:  `SELECT COUNT(*) FROM whisky`,
}
