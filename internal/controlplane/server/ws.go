package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/views"
	"github.com/betbot/opsboard/pkg/syncgroup"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 控制台同源部署，允许本地调试页面直接连接
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClientMessage 客户端消息：{"type":"select","symbol":["BTCUSDT"],"from":"2024-03-01"}
type wsClientMessage struct {
	Type     string   `json:"type"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Symbol   []string `json:"symbol,omitempty"`
	UID      []string `json:"uid,omitempty"`
	Asset    []string `json:"asset,omitempty"`
	Exchange []string `json:"exchange,omitempty"`
	Group    string   `json:"group,omitempty"`
}

func (m wsClientMessage) selection(loc *time.Location) (filter.Selection, error) {
	q := url.Values{}
	q.Set("from", m.From)
	q.Set("to", m.To)
	q.Set("group", m.Group)
	q["symbol"] = m.Symbol
	q["uid"] = m.UID
	q["asset"] = m.Asset
	q["exchange"] = m.Exchange
	return filter.FromQuery(q, loc)
}

type wsServerMessage struct {
	Type     string          `json:"type"` // snapshot | error
	Snapshot *views.Snapshot `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// handleViewStream 打开视图并推送快照；连接断开即关闭视图（周期任务随之拆除）
func (s *Server) handleViewStream(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "view")
	if !s.views.Has(name) {
		writeError(w, 404, fmt.Sprintf("unknown view %q", name))
		return
	}
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	g, ctx := syncgroup.New(r.Context())
	v, err := s.views.Open(ctx, name, sel)
	if err != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		_ = conn.WriteJSON(wsServerMessage{Type: "error", Error: err.Error()})
		return
	}
	defer v.Close()

	logger := log.WithField("view", name)
	logger.Debug("ws view opened")

	out := make(chan wsServerMessage, 4)

	g.Go("writer", func() error {
		// 关闭连接以中断 reader 的 ReadMessage
		defer conn.Close()
		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()
		write := func(m wsServerMessage) error {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			return conn.WriteJSON(m)
		}
		for {
			select {
			case <-ctx.Done():
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			case snap, ok := <-v.Updates():
				if !ok {
					return nil
				}
				if err := write(wsServerMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
					return err
				}
			case m := <-out:
				if err := write(m); err != nil {
					return err
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return err
				}
			}
		}
	})

	g.Go("reader", func() error {
		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			var msg wsClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				s.wsReply(ctx, out, fmt.Sprintf("invalid json: %v", err))
				continue
			}
			switch msg.Type {
			case "select":
				next, err := msg.selection(s.cfg.Location)
				if err != nil {
					s.wsReply(ctx, out, fmt.Sprintf("bad selection: %v", err))
					continue
				}
				v.Select(next)
			default:
				s.wsReply(ctx, out, fmt.Sprintf("unknown message type %q", msg.Type))
			}
		}
	})

	g.Go("shutdown", func() error {
		select {
		case <-s.bgCtx.Done():
		case <-ctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Debugf("ws view closed: %v", err)
		return
	}
	logger.Debug("ws view closed")
}

func (s *Server) wsReply(ctx context.Context, out chan<- wsServerMessage, msg string) {
	select {
	case out <- wsServerMessage{Type: "error", Error: msg}:
	case <-ctx.Done():
	}
}
