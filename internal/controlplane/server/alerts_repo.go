package server

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/filter"
	"github.com/shopspring/decimal"
)

// dbTimeLayout 固定宽度，保证按字符串排序即按时间排序；读取时按 RFC3339Nano 解析
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func (s *Server) insertAlertRule(ctx context.Context, r domain.AlertRule) (int64, error) {
	now := formatTime(s.cfg.Now())
	res, err := s.db.ExecContext(ctx, `
INSERT INTO alert_rules (pair, threshold, interval_seconds, notify_channel, enabled, created_at, updated_at)
VALUES (?,?,?,?,?,?,?)
`, r.Pair, r.Threshold.String(), r.IntervalSeconds, r.NotifyChannel, boolToInt(r.Enabled), now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const alertRuleColumns = `id, pair, threshold, interval_seconds, notify_channel, enabled, last_triggered_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlertRule(sc rowScanner) (domain.AlertRule, error) {
	var (
		r         domain.AlertRule
		threshold string
		enabled   int
		lastAt    sql.NullString
		createdAt string
		updatedAt string
	)
	if err := sc.Scan(&r.ID, &r.Pair, &threshold, &r.IntervalSeconds, &r.NotifyChannel, &enabled, &lastAt, &createdAt, &updatedAt); err != nil {
		return r, err
	}
	r.Threshold, _ = decimal.NewFromString(threshold)
	r.Enabled = enabled != 0
	r.LastTriggeredAt = parseNullTime(lastAt)
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return r, nil
}

// ListAlertRules 全部告警规则（按 id）
func (s *Server) ListAlertRules(ctx context.Context) ([]domain.AlertRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+alertRuleColumns+` FROM alert_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AlertRule{}
	for rows.Next() {
		r, err := scanAlertRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Server) getAlertRule(ctx context.Context, id int64) (*domain.AlertRule, error) {
	r, err := scanAlertRule(s.db.QueryRowContext(ctx, `SELECT `+alertRuleColumns+` FROM alert_rules WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Server) updateAlertRule(ctx context.Context, r domain.AlertRule) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE alert_rules
SET pair=?, threshold=?, interval_seconds=?, notify_channel=?, enabled=?, updated_at=?
WHERE id=?
`, r.Pair, r.Threshold.String(), r.IntervalSeconds, r.NotifyChannel, boolToInt(r.Enabled), formatTime(s.cfg.Now()), r.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Server) deleteAlertRule(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alert_rules WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkRuleTriggered 记录规则最近一次触发时间
func (s *Server) MarkRuleTriggered(ctx context.Context, ruleID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE alert_rules SET last_triggered_at=? WHERE id=?`, formatTime(at), ruleID)
	return err
}

// InsertAlertEvent 写入告警记录
func (s *Server) InsertAlertEvent(ctx context.Context, e domain.AlertEvent) error {
	status := e.Status
	if status == "" {
		status = domain.AlertPending
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO alert_events (id, rule_id, at, pair, level, trigger_value, threshold, status)
VALUES (?,?,?,?,?,?,?,?)
`, e.ID, e.RuleID, formatTime(e.Time), e.Pair, string(e.Level), e.TriggerValue.String(), e.Threshold.String(), string(status))
	return err
}

// ListAlertEvents 满足筛选条件（时间区间、币对）的最近告警记录（时间倒序）。
// 条件在 SQL 中生效，LIMIT 作用于过滤之后
func (s *Server) ListAlertEvents(ctx context.Context, sel filter.Selection, limit int) ([]domain.AlertEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var (
		where []string
		args  []any
	)
	if !sel.From.IsZero() {
		where = append(where, "at > ?")
		args = append(args, formatTime(sel.From))
	}
	if !sel.To.IsZero() {
		where = append(where, "at < ?")
		args = append(args, formatTime(sel.To))
	}
	if len(sel.Symbols) > 0 {
		// pair 以 BTC/USDT 形式存储，与 domain.NormalizeSymbol 的规则一致
		where = append(where, "UPPER(REPLACE(REPLACE(REPLACE(pair,'/',''),'-',''),'_','')) IN (?"+strings.Repeat(",?", len(sel.Symbols)-1)+")")
		for _, sym := range sel.Symbols {
			args = append(args, domain.NormalizeSymbol(sym))
		}
	}
	q := `
SELECT id, rule_id, at, pair, level, trigger_value, threshold, status, handler, handled_at, remark
FROM alert_events`
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nORDER BY at DESC\nLIMIT ?"
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AlertEvent{}
	for rows.Next() {
		var (
			e         domain.AlertEvent
			ruleID    sql.NullInt64
			at        string
			level     string
			trigger   string
			threshold string
			status    string
			handler   sql.NullString
			handledAt sql.NullString
			remark    sql.NullString
		)
		if err := rows.Scan(&e.ID, &ruleID, &at, &e.Pair, &level, &trigger, &threshold, &status, &handler, &handledAt, &remark); err != nil {
			return nil, err
		}
		e.RuleID = ruleID.Int64
		e.Time, _ = time.Parse(time.RFC3339Nano, at)
		e.Level = domain.AlertLevel(level)
		e.TriggerValue, _ = decimal.NewFromString(trigger)
		e.Threshold, _ = decimal.NewFromString(threshold)
		e.Status = domain.AlertStatus(status)
		e.Handler = handler.String
		e.HandledAt = parseNullTime(handledAt)
		e.Remark = remark.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// updateAlertEventStatus 处理告警：更新状态、处理人与备注
func (s *Server) updateAlertEventStatus(ctx context.Context, id string, status domain.AlertStatus, handler, remark string) (bool, error) {
	var handledAt *string
	if status == domain.AlertHandled {
		v := formatTime(s.cfg.Now())
		handledAt = &v
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE alert_events
SET status=?, handler=?, remark=?, handled_at=?
WHERE id=?
`, string(status), handler, remark, handledAt, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
