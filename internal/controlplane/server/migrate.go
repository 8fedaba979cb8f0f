package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/betbot/opsboard/internal/fixture"
)

func (s *Server) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA foreign_keys=ON;`,
		`
CREATE TABLE IF NOT EXISTS alert_rules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  pair TEXT NOT NULL,
  threshold TEXT NOT NULL,
  interval_seconds INTEGER NOT NULL DEFAULT 3,
  notify_channel TEXT NOT NULL DEFAULT 'lark',
  enabled INTEGER NOT NULL DEFAULT 1,
  last_triggered_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
		`
CREATE TABLE IF NOT EXISTS alert_events (
  id TEXT PRIMARY KEY,
  rule_id INTEGER,
  at TEXT NOT NULL,
  pair TEXT NOT NULL,
  level TEXT NOT NULL,
  trigger_value TEXT NOT NULL,
  threshold TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  handler TEXT,
  handled_at TEXT,
  remark TEXT
);`,
		`CREATE INDEX IF NOT EXISTS idx_alert_events_at ON alert_events(at);`,
		`
CREATE TABLE IF NOT EXISTS export_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  preset TEXT NOT NULL,
  format TEXT NOT NULL,
  selection_json TEXT,
  filename TEXT,
  started_at TEXT NOT NULL,
  finished_at TEXT,
  ok INTEGER,
  error TEXT
);`,
		`CREATE INDEX IF NOT EXISTS idx_export_runs_started_at ON export_runs(started_at);`,
	}

	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate exec failed: %w", err)
		}
	}

	// 兼容：早期 export_runs 没有 bytes 列（SQLite 不支持 ADD COLUMN IF NOT EXISTS）
	ok, err := hasColumn(ctx, s.db, "export_runs", "bytes")
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE export_runs ADD COLUMN bytes INTEGER;`); err != nil {
			return fmt.Errorf("alter export_runs add bytes: %w", err)
		}
	}

	return s.seedAlertRules(ctx)
}

// seedAlertRules 空库写入初始告警规则
func (s *Server) seedAlertRules(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM alert_rules`).Scan(&n); err != nil {
		return fmt.Errorf("count alert rules: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, rule := range fixture.SeedAlertRules() {
		if _, err := s.insertAlertRule(ctx, rule); err != nil {
			return fmt.Errorf("seed alert rule %s: %w", rule.Pair, err)
		}
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table string, col string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	// PRAGMA table_info 返回：cid,name,type,notnull,dflt_value,pk
	for rows.Next() {
		var (
			cid       int
			name      string
			typ       string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == col {
			return true, nil
		}
	}
	return false, rows.Err()
}
