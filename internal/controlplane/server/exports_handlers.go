package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/betbot/opsboard/internal/export"
	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/metrics"
	"github.com/betbot/opsboard/internal/views"
	"github.com/betbot/opsboard/pkg/artifact"
)

func (s *Server) handleExportRunsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	runs, err := s.listExportRuns(ctx, parseLimit(r))
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db list export runs: %v", err))
		return
	}
	writeJSON(w, 200, listResponse{Items: runs, Empty: len(runs) == 0})
}

// exportData 按筛选条件准备导出数据（与页面展示使用同一份生成与过滤逻辑）。
// requestedTo 为查询参数中的结束时间，只用于文件名
func (s *Server) exportData(sel filter.Selection, requestedTo time.Time) export.Data {
	return export.Data{
		Daily:  filter.Apply(s.gen.DailyReport(), sel),
		Trades: filter.Apply(views.TradeRecords(s.gen), sel),
		Fees:   filter.Apply(s.gen.Fees(0), sel),
		From:   sel.From,
		To:     requestedTo,
		At:     s.cfg.Now(),
		Loc:    s.cfg.Location,
	}
}

// handleExport GET /api/export/<preset>.<csv|zip|xlsx>
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := strings.TrimSpace(pathParam(r, "file"))
	ext := path.Ext(file)
	format, ok := export.ParseFormat(ext)
	if !ok {
		writeError(w, 400, fmt.Sprintf("unsupported export format %q (csv, zip, xlsx)", ext))
		return
	}
	preset := export.Preset(strings.TrimSuffix(file, ext))
	if !preset.Valid() {
		writeError(w, 404, fmt.Sprintf("unknown export preset %q", string(preset)))
		return
	}
	if format == export.FormatCSV && preset.Sheets() != 1 {
		writeError(w, 400, fmt.Sprintf("%s has %d sheets; use .zip or .xlsx", preset, preset.Sheets()))
		return
	}
	sel, err := filter.FromQuery(r.URL.Query(), s.cfg.Location)
	if err != nil {
		writeError(w, 400, fmt.Sprintf("bad selection: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var selJSON *string
	if b, err := json.Marshal(sel); err == nil {
		v := string(b)
		selJSON = &v
	}
	runID, err := s.insertExportRunStart(ctx, string(preset), string(format), selJSON)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db insert export run: %v", err))
		return
	}

	fail := func(code int, msg string) {
		metrics.ExportRuns.WithLabelValues(string(format), "error").Inc()
		if err := s.finishExportRun(ctx, runID, false, nil, nil, &msg); err != nil {
			log.Warnf("finish export run %d: %v", runID, err)
		}
		writeError(w, code, msg)
	}

	data := s.exportData(sel, filter.RequestedTo(r.URL.Query(), s.cfg.Location))
	name, sheets, err := preset.Build(data)
	if err != nil {
		fail(400, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, sheets, data.At); err != nil {
		fail(500, fmt.Sprintf("render export: %v", err))
		return
	}
	filename := name + "." + string(format)
	size := int64(buf.Len())

	err = s.artifacts.Put(strconv.FormatInt(runID, 10), artifact.Artifact{
		Name:        filename,
		ContentType: format.ContentType(),
		CreatedAt:   data.At,
		Data:        buf.Bytes(),
	})
	if err != nil {
		// 产物保存失败不影响本次下载，只是无法再次下载
		log.Warnf("store export artifact %d: %v", runID, err)
	}
	if err := s.finishExportRun(ctx, runID, true, &filename, &size, nil); err != nil {
		log.Warnf("finish export run %d: %v", runID, err)
	}
	metrics.ExportRuns.WithLabelValues(string(format), "ok").Inc()
	metrics.ExportBytes.WithLabelValues(string(format)).Add(float64(size))

	writeAttachment(w, filename, format.ContentType(), runID, buf.Bytes())
}

func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	runID, ok := parseID(r, "runID")
	if !ok {
		writeError(w, 400, "invalid run id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	run, err := s.getExportRun(ctx, runID)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db get export run: %v", err))
		return
	}
	if run == nil {
		writeError(w, 404, "export run not found")
		return
	}
	a, err := s.artifacts.Get(strconv.FormatInt(runID, 10))
	if errors.Is(err, artifact.ErrNotFound) {
		writeError(w, 404, "export artifact expired or missing")
		return
	}
	if err != nil {
		writeError(w, 500, fmt.Sprintf("load artifact: %v", err))
		return
	}
	writeAttachment(w, a.Name, a.ContentType, runID, a.Data)
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, runID int64, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Export-Run-ID", strconv.FormatInt(runID, 10))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
