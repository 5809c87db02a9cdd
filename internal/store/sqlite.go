package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"ChartBridge/internal/logger"
	"ChartBridge/internal/model"
)

// SQLiteStore persists candles to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboard reads while
	// the refresh loop writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Log.Info("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candles (
			symbol    TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			ts        INTEGER NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    REAL,
			PRIMARY KEY (symbol, timeframe, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candles_ts ON candles(ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// SaveBars upserts bars; re-fetching a window never duplicates rows.
func (s *SQLiteStore) SaveBars(symbol, timeframe string, bars []model.OHLCV) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO candles
		(symbol, timeframe, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, timeframe, ts) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol, timeframe, b.Time.Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	return tx.Commit()
}

// Bars returns up to limit most recent bars, ordered ascending by time.
func (s *SQLiteStore) Bars(symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	rows, err := s.db.Query(`SELECT ts, open, high, low, close, volume
		FROM (SELECT * FROM candles WHERE symbol = ? AND timeframe = ?
		      ORDER BY ts DESC LIMIT ?)
		ORDER BY ts ASC`, symbol, timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var ts int64
		var b model.OHLCV
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = time.Unix(ts, 0)
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (s *SQLiteStore) Close() error {
	logger.Log.Info("closing sqlite store")
	return s.db.Close()
}
