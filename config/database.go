package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DSN формирует строку подключения для выбранного драйвера
func (c DatabaseConfig) DSN() (string, error) {
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			c.User,
			c.Password,
			c.Host,
			c.Port,
			c.DBName,
		), nil
	case "pgx":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.DBName,
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("неизвестный драйвер базы данных: %q (ожидается mysql или pgx)", c.Driver)
	}
}

// ConnectDatabase устанавливает подключение к базе данных цен и инфляции
func ConnectDatabase(ctx context.Context, c DatabaseConfig) (*sql.DB, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Настройка параметров пула соединений
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	pingCtx, cancel := context.WithTimeout(ctx, c.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой данных: %w", err)
	}

	log.Printf("✅ Успешное подключение к базе данных %s (%s)", c.DBName, c.Driver)
	return db, nil
}

// CloseDatabase закрывает подключение к базе данных
func CloseDatabase(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Printf("❌ Ошибка при закрытии соединения с базой данных: %v", err)
		return
	}
	log.Println("✅ Соединение с базой данных закрыто")
}
