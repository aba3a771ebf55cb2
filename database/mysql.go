package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"

	"tableorder/config"
	"tableorder/models"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection VARCHAR(64)  NOT NULL,
	id         VARCHAR(64)  NOT NULL,
	body       JSON         NOT NULL,
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	PRIMARY KEY (collection, id)
)`

// MySQLDriver keeps every document as a row of the documents table.
type MySQLDriver struct {
	db *sql.DB
}

func mysqlDSN(cfg *config.Config) string {
	c := mysql.NewConfig()
	c.User = cfg.DBUser
	c.Passwd = cfg.DBPassword
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	c.DBName = cfg.DBName
	c.ParseTime = true
	return c.FormatDSN()
}

// NewMySQL 初始化数据库并创建表
func NewMySQL(ctx context.Context, cfg *config.Config) (*MySQLDriver, error) {
	db, err := sql.Open("mysql", mysqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := pingWithRetry(ctx, db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql schema: %w", err)
	}
	return &MySQLDriver{db: db}, nil
}

func (m *MySQLDriver) List(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT body FROM documents WHERE collection = ? ORDER BY created_at, id", collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}

func (m *MySQLDriver) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body []byte
	err := m.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return body, err
}

func (m *MySQLDriver) Put(ctx context.Context, collection, id string, doc []byte) error {
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE body = VALUES(body)",
		collection, id, string(doc))
	return err
}

func (m *MySQLDriver) Delete(ctx context.Context, collection, id string) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	return err
}

func (m *MySQLDriver) Close() error { return m.db.Close() }
