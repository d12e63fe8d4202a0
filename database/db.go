// database/db.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
)

// retryDelay пауза перед повторным запросом
const retryDelay = 200 * time.Millisecond

// SQLRepository реализация models.Repository поверх database/sql.
// Поддерживает драйверы mysql и pgx; плейсхолдеры "?" переписываются под драйвер.
type SQLRepository struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewSQLRepository создает репозиторий. timeout ограничивает каждую попытку запроса.
func NewSQLRepository(db *sql.DB, driver string, timeout time.Duration, m *metrics.Metrics) *SQLRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SQLRepository{
		db:      db,
		driver:  driver,
		timeout: timeout,
		metrics: m,
	}
}

// Ping проверяет доступность базы данных
func (r *SQLRepository) Ping(ctx context.Context) error {
	const op = "database.Ping"
	return r.run(ctx, op, func(ctx context.Context) error {
		return r.db.PingContext(ctx)
	})
}

// scanError ошибка чтения строки результата; не повторяется и не считается ошибкой соединения
type scanError struct {
	err error
}

func (e *scanError) Error() string { return "ошибка при чтении данных: " + e.err.Error() }
func (e *scanError) Unwrap() error { return e.err }

// run выполняет fn с таймаутом на попытку и одним повтором при сбое.
// sql.ErrNoRows и ошибки чтения строк не повторяются.
// Остальные ошибки после исчерпания попыток помечаются как ошибки соединения.
func (r *SQLRepository) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		err := fn(attemptCtx)
		var se *scanError
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, sql.ErrNoRows), errors.As(err, &se):
			return struct{}{}, backoff.Permanent(err)
		case ctx.Err() != nil:
			// Запрос отменен вызывающей стороной
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(retryDelay)),
		backoff.WithMaxTries(2),
		backoff.WithNotify(func(err error, _ time.Duration) {
			log.Printf("⚠️ %s: повтор запроса после ошибки: %v", op, err)
			if r.metrics != nil {
				r.metrics.QueryRetry.Inc()
			}
		}),
	)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if r.metrics != nil {
		r.metrics.QueryErrors.WithLabelValues(op).Inc()
	}
	var se *scanError
	if errors.As(err, &se) {
		return &models.Error{Kind: models.KindInternal, Op: op, Message: "ошибка при чтении данных", Err: se.err}
	}
	return models.Connection(op, err)
}

// rebind переписывает плейсхолдеры "?" в "$1, $2, ..." для драйвера pgx
func rebind(driver, query string) string {
	if driver != "pgx" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// placeholders возвращает "?, ?, ?" для n параметров
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, rebind(r.driver, query), args...)
}

func (r *SQLRepository) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(ctx, rebind(r.driver, query), args...)
}
