package storage

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"sitebuilder/internal/config"
)

// OpenPostgres connects with lib/pq and migrates app_state.
func OpenPostgres(ctx context.Context, cfg config.StorageConfig) (*SQLStore, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildPostgresDSN(cfg)
	}
	return openRemoteSQL(ctx, "postgres", dsn, goose.DialectPostgres)
}

// OpenMySQL connects with go-sql-driver/mysql and migrates app_state.
func OpenMySQL(ctx context.Context, cfg config.StorageConfig) (*SQLStore, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildMySQLDSN(cfg)
	}
	return openRemoteSQL(ctx, "mysql", dsn, goose.DialectMySQL)
}

func openRemoteSQL(ctx context.Context, driverName, dsn string, dialect goose.Dialect) (*SQLStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return newSQLStore(db, dialect)
}

func buildPostgresDSN(cfg config.StorageConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	// URL form so credentials with spaces or quotes survive escaping.
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

func buildMySQLDSN(cfg config.StorageConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Database,
	)
	if cfg.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
