package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// drivers selectable by name in NewSQLProvider
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/alittlebrighter/bandstat"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"

	RequestTimeout = 10 * time.Second
)

var _ bandstat.ConfigProvider = (*SQLProvider)(nil)

// SQLProvider reads the band from the single row of the Config table.
type SQLProvider struct {
	DB *sql.DB
}

// NewSQLProvider opens and pings the database. For MySQL the dsn looks like
// "root:root@tcp(localhost:3306)/thermostat".
func NewSQLProvider(driver, dsn string) (*SQLProvider, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging %s database: %w", driver, err)
	}

	return &SQLProvider{DB: db}, nil
}

// Setup creates the Config table when it does not exist yet.
func (p *SQLProvider) Setup(ctx context.Context) error {
	sqlctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	_, err := p.DB.ExecContext(sqlctx, `
		CREATE TABLE IF NOT EXISTS Config (
			min_temperature DOUBLE NOT NULL,
			max_temperature DOUBLE NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("error creating Config table: %w", err)
	}
	return nil
}

// Store replaces the stored band.
func (p *SQLProvider) Store(ctx context.Context, band bandstat.Band) error {
	sqlctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	tx, err := p.DB.BeginTx(sqlctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(sqlctx, `DELETE FROM Config`); err != nil {
		return fmt.Errorf("error clearing Config table: %w", err)
	}
	_, err = tx.ExecContext(sqlctx,
		`INSERT INTO Config (min_temperature, max_temperature) VALUES (?, ?)`,
		band.Min, band.Max,
	)
	if err != nil {
		return fmt.Errorf("error inserting band %v: %w", band, err)
	}

	return tx.Commit()
}

// Band returns the first row of the Config table, or nil when the table is empty.
func (p *SQLProvider) Band(ctx context.Context) (*bandstat.Band, error) {
	sqlctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	band := new(bandstat.Band)
	err := p.DB.QueryRowContext(sqlctx,
		`SELECT min_temperature, max_temperature FROM Config LIMIT 1`,
	).Scan(&band.Min, &band.Max)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying Config table: %w", err)
	}
	return band, nil
}

func (p *SQLProvider) Close() error {
	if err := p.DB.Close(); err != nil {
		return fmt.Errorf("error while disconnecting from db: %w", err)
	}
	return nil
}
