// Package database opens the MySQL connection pool and applies the
// embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options describe the connection pool.
type Options struct {
	User            string
	Pass            string
	Host            string
	Port            string
	Name            string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the driver connection string.  parseTime maps DATE and
// DATETIME columns to time.Time and loc=UTC keeps stored timestamps in UTC.
func (o Options) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", o.DSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	maxOpen := o.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	lifetime := o.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(lifetime)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
