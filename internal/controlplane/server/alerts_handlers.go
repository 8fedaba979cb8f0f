package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/betbot/opsboard/internal/alerting"
	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/views"
)

const defaultRuleIntervalSeconds = 3

// apply 校验请求并写入规则；返回错误信息用于 400
func (req alertRuleRequest) apply(rule *domain.AlertRule) string {
	pair := strings.ToUpper(strings.TrimSpace(req.Pair))
	if pair == "" {
		return "pair is required"
	}
	if !strings.Contains(pair, "/") {
		pair = domain.DisplayPair(pair)
	}
	if req.Threshold.Sign() <= 0 {
		return "threshold must be positive"
	}
	if req.IntervalSeconds < 0 {
		return "interval_seconds must not be negative"
	}
	channel := strings.ToLower(strings.TrimSpace(req.NotifyChannel))
	if channel == "" {
		channel = alerting.ChannelLark
	}
	if channel != alerting.ChannelLark && channel != alerting.ChannelLog {
		return fmt.Sprintf("unknown notify_channel %q", req.NotifyChannel)
	}
	rule.Pair = pair
	rule.Threshold = req.Threshold
	rule.IntervalSeconds = req.IntervalSeconds
	if rule.IntervalSeconds == 0 {
		rule.IntervalSeconds = defaultRuleIntervalSeconds
	}
	rule.NotifyChannel = channel
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	return ""
}

// rulesChanged 规则变更后丢弃缓存快照并尽快重新评估
func (s *Server) rulesChanged() {
	s.snapshots.Clear()
	s.rulesKick.Emit()
}

func (s *Server) handleAlertRulesList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rules, err := s.ListAlertRules(ctx)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db list alert rules: %v", err))
		return
	}
	writeJSON(w, 200, listResponse{Items: rules, Empty: len(rules) == 0})
}

func (s *Server) handleAlertRuleCreate(w http.ResponseWriter, r *http.Request) {
	var req alertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, fmt.Sprintf("invalid json: %v", err))
		return
	}
	rule := domain.AlertRule{Enabled: true}
	if msg := req.apply(&rule); msg != "" {
		writeError(w, 400, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	id, err := s.insertAlertRule(ctx, rule)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db insert alert rule: %v", err))
		return
	}
	created, err := s.getAlertRule(ctx, id)
	if err != nil || created == nil {
		writeError(w, 500, fmt.Sprintf("db get alert rule: %v", err))
		return
	}
	s.rulesChanged()
	writeJSON(w, 201, created)
}

func (s *Server) handleAlertRuleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "ruleID")
	if !ok {
		writeError(w, 400, "invalid rule id")
		return
	}
	var req alertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, fmt.Sprintf("invalid json: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rule, err := s.getAlertRule(ctx, id)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db get alert rule: %v", err))
		return
	}
	if rule == nil {
		writeError(w, 404, "alert rule not found")
		return
	}
	if msg := req.apply(rule); msg != "" {
		writeError(w, 400, msg)
		return
	}
	if _, err := s.updateAlertRule(ctx, *rule); err != nil {
		writeError(w, 500, fmt.Sprintf("db update alert rule: %v", err))
		return
	}
	updated, err := s.getAlertRule(ctx, id)
	if err != nil || updated == nil {
		writeError(w, 500, fmt.Sprintf("db get alert rule: %v", err))
		return
	}
	s.rulesChanged()
	writeJSON(w, 200, updated)
}

func (s *Server) handleAlertRuleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "ruleID")
	if !ok {
		writeError(w, 400, "invalid rule id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	deleted, err := s.deleteAlertRule(ctx, id)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db delete alert rule: %v", err))
		return
	}
	if !deleted {
		writeError(w, 404, "alert rule not found")
		return
	}
	s.rulesChanged()
	writeJSON(w, 200, map[string]any{"ok": true})
}

// filteredEvents 最近告警记录，按查询参数中的时间/币对过滤
func (s *Server) filteredEvents(w http.ResponseWriter, r *http.Request, limit int) ([]domain.AlertEvent, bool) {
	sel, ok := s.selection(w, r)
	if !ok {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	events, err := s.ListAlertEvents(ctx, sel, limit)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db list alert events: %v", err))
		return nil, false
	}
	return filter.Apply(events, sel), true
}

func (s *Server) handleAlertEventsList(w http.ResponseWriter, r *http.Request) {
	events, ok := s.filteredEvents(w, r, parseLimit(r))
	if !ok {
		return
	}
	writeJSON(w, 200, listResponse{Items: events, Empty: len(events) == 0})
}

func (s *Server) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	events, ok := s.filteredEvents(w, r, 200)
	if !ok {
		return
	}
	writeJSON(w, 200, views.AlertStatsOf(events))
}

func (s *Server) handleAlertEventHandle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(pathParam(r, "eventID"))
	if id == "" {
		writeError(w, 400, "event id is required")
		return
	}
	var req alertEventHandleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, fmt.Sprintf("invalid json: %v", err))
		return
	}
	status := domain.AlertStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		status = domain.AlertHandled
	}
	if !status.Valid() {
		writeError(w, 400, fmt.Sprintf("unknown status %q", req.Status))
		return
	}
	handler := strings.TrimSpace(req.Handler)
	if status != domain.AlertPending && handler == "" {
		writeError(w, 400, "handler is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ok, err := s.updateAlertEventStatus(ctx, id, status, handler, strings.TrimSpace(req.Remark))
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db update alert event: %v", err))
		return
	}
	if !ok {
		writeError(w, 404, "alert event not found")
		return
	}
	s.snapshots.Clear()
	writeJSON(w, 200, map[string]any{"ok": true, "id": id, "status": status})
}

// handleAlertEvaluateNow 立即用当前盈亏快照评估一次
func (s *Server) handleAlertEvaluateNow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	fired, err := s.evaluateAlerts(ctx)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("evaluate alerts: %v", err))
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "fired": fired})
}
