package server

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func (s *Server) insertExportRunStart(ctx context.Context, preset, format string, selectionJSON *string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO export_runs (preset, format, selection_json, started_at)
VALUES (?,?,?,?)
`, preset, format, selectionJSON, formatTime(s.cfg.Now()))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Server) finishExportRun(ctx context.Context, runID int64, ok bool, filename *string, size *int64, errMsg *string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE export_runs
SET finished_at=?, ok=?, filename=?, bytes=?, error=?
WHERE id=?
`, formatTime(s.cfg.Now()), boolToInt(ok), filename, size, errMsg, runID)
	return err
}

const exportRunColumns = `id, preset, format, selection_json, filename, started_at, finished_at, ok, error, bytes`

func scanExportRun(sc rowScanner) (ExportRun, error) {
	var (
		j          ExportRun
		selection  sql.NullString
		filename   sql.NullString
		startedAt  string
		finishedAt sql.NullString
		okVal      sql.NullInt64
		errStr     sql.NullString
		size       sql.NullInt64
	)
	if err := sc.Scan(&j.ID, &j.Preset, &j.Format, &selection, &filename, &startedAt, &finishedAt, &okVal, &errStr, &size); err != nil {
		return j, err
	}
	j.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	j.FinishedAt = parseNullTime(finishedAt)
	if selection.Valid {
		v := selection.String
		j.Selection = &v
	}
	if filename.Valid {
		v := filename.String
		j.Filename = &v
	}
	if okVal.Valid {
		v := okVal.Int64 != 0
		j.OK = &v
	}
	if errStr.Valid {
		v := errStr.String
		j.Error = &v
	}
	if size.Valid {
		v := size.Int64
		j.Bytes = &v
	}
	return j, nil
}

func (s *Server) listExportRuns(ctx context.Context, limit int) ([]ExportRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+exportRunColumns+`
FROM export_runs
ORDER BY started_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ExportRun{}
	for rows.Next() {
		j, err := scanExportRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Server) getExportRun(ctx context.Context, runID int64) (*ExportRun, error) {
	j, err := scanExportRun(s.db.QueryRowContext(ctx, `SELECT `+exportRunColumns+` FROM export_runs WHERE id=?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}
