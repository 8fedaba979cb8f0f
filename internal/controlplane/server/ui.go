package server

import (
	"net/http"
)

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(uiHTML))
}

const uiHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>opsboard</title>
  <style>
    body { font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; margin: 0; }
    .wrap { display: grid; grid-template-columns: 220px 1fr; height: 100vh; }
    .left { border-right: 1px solid #eee; padding: 12px; overflow:auto; }
    .right { padding: 12px; overflow:auto; }
    .view { padding: 8px; border: 1px solid #eee; border-radius: 8px; margin-bottom: 8px; cursor: pointer; }
    .view:hover, .view.active { background: #fafafa; }
    pre { background:#0b1020; color:#d6e2ff; padding:12px; border-radius:8px; overflow:auto; min-height: 320px; }
    table { border-collapse: collapse; font-size: 13px; }
    td, th { border: 1px solid #eee; padding: 4px 8px; text-align: right; }
    th { background: #fafafa; }
    button { margin-right: 8px; }
    input { width: 120px; }
    .row { display:flex; gap: 8px; align-items:center; flex-wrap: wrap; margin-bottom: 8px; }
    .muted { color:#666; font-size: 12px; }
    .empty { color:#999; padding: 24px; }
  </style>
</head>
<body>
<div class="wrap">
  <div class="left">
    <h3 style="margin:0 0 8px 0">opsboard</h3>
    <div class="muted" id="clock">--</div>
    <div id="views" style="margin-top:12px"></div>
    <h4>导出</h4>
    <div><a href="/api/export/daily_report.csv">每日报表 CSV</a></div>
    <div><a href="/api/export/trade_history.xlsx">成交历史 XLSX</a></div>
    <div><a href="/api/export/full_report.zip">完整报表 ZIP</a></div>
    <div class="muted" style="margin-top:8px"><a href="#" onclick="loadRuns();return false">导出记录</a></div>
  </div>
  <div class="right">
    <div class="row">
      <label>开始 <input id="from" placeholder="2024-03-01"/></label>
      <label>结束 <input id="to" placeholder="2024-03-31"/></label>
      <label>交易对 <input id="symbol" placeholder="BTCUSDT"/></label>
      <label>UID <input id="uid" placeholder="ALL"/></label>
      <label>账户组
        <select id="group"><option value="">ALL</option><option value="maker">Maker</option><option value="taker">Taker</option></select>
      </label>
      <button onclick="applySelection()">应用</button>
    </div>
    <div class="muted" id="status">未连接</div>
    <div id="table"></div>
    <pre id="out"></pre>
  </div>
</div>
<script>
let ws = null;
let current = 'dashboard';

function selectionMessage() {
  const v = id => document.getElementById(id).value.trim();
  const list = s => s ? s.split(',').map(x => x.trim()).filter(Boolean) : [];
  return { type: 'select', from: v('from'), to: v('to'), symbol: list(v('symbol')), uid: list(v('uid')), group: v('group') };
}

function renderTable(items) {
  const el = document.getElementById('table');
  if (!Array.isArray(items)) { el.innerHTML = ''; return; }
  if (items.length === 0) { el.innerHTML = '<div class="empty">暂无数据</div>'; return; }
  const cols = Object.keys(items[0]).filter(k => typeof items[0][k] !== 'object' || items[0][k] === null);
  let html = '<table><tr>' + cols.map(c => '<th>' + c + '</th>').join('') + '</tr>';
  for (const it of items.slice(0, 50)) {
    html += '<tr>' + cols.map(c => '<td>' + (it[c] ?? '') + '</td>').join('') + '</tr>';
  }
  el.innerHTML = html + '</table>';
}

function firstList(data) {
  if (!data) return null;
  for (const k of ['trades', 'orders', 'balances', 'events', 'daily', 'fees', 'stats']) {
    if (Array.isArray(data[k])) return data[k];
  }
  return null;
}

function open(view) {
  current = view;
  document.querySelectorAll('.view').forEach(e => e.classList.toggle('active', e.dataset.view === view));
  if (ws) { ws.onclose = null; ws.close(); }
  const proto = location.protocol === 'https:' ? 'wss' : 'ws';
  ws = new WebSocket(proto + '://' + location.host + '/ws/views/' + view);
  ws.onopen = () => { document.getElementById('status').textContent = '已连接 ' + view; applySelection(); };
  ws.onclose = () => { document.getElementById('status').textContent = '连接已关闭'; };
  ws.onmessage = ev => {
    const msg = JSON.parse(ev.data);
    if (msg.type === 'error') { document.getElementById('status').textContent = msg.error; return; }
    const snap = msg.snapshot;
    document.getElementById('status').textContent = view + ' #' + snap.seq + ' @ ' + new Date(snap.at).toLocaleTimeString();
    renderTable(firstList(snap.data));
    document.getElementById('out').textContent = JSON.stringify(snap.data, null, 2);
  };
}

function applySelection() {
  if (ws && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(selectionMessage()));
}

async function loadRuns() {
  const res = await fetch('/api/exports/runs');
  const body = await res.json();
  renderTable(body.items.map(r => Object.assign({}, r, { download: r.ok ? '/api/exports/runs/' + r.id + '/download' : '' })));
}

async function init() {
  const names = await (await fetch('/api/views')).json();
  document.getElementById('views').innerHTML = names.filter(n => n !== 'clock')
    .map(n => '<div class="view" data-view="' + n + '" onclick="open(\'' + n + '\')">' + n + '</div>').join('');
  open(current);
  setInterval(async () => {
    const c = await (await fetch('/api/clock')).json();
    document.getElementById('clock').textContent = c.text;
  }, 1000);
}
init();
</script>
</body>
</html>
`
