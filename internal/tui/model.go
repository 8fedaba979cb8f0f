package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/views"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

const clockLayout = "2006-01-02 15:04:05"

type model struct {
	title    string
	updateCh <-chan views.Snapshot
	snapshot *views.Snapshot
	data     views.DashboardData
	now      time.Time
	closed   bool
	width    int
	height   int
}

func newModel(title string, updateCh <-chan views.Snapshot) model {
	return model{title: title, updateCh: updateCh, now: time.Now()}
}

type updateMsg struct {
	snapshot views.Snapshot
}

type closedMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case updateMsg:
		snap := msg.snapshot
		m.snapshot = &snap
		if data, ok := snap.Data.(views.DashboardData); ok {
			m.data = data
		}
		return m, m.waitForUpdate()
	case closedMsg:
		// 视图已关闭，不再有更新
		m.closed = true
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tick()
	}
	return m, nil
}

func (m model) View() string {
	if m.snapshot == nil {
		return headerStyle.Render(m.title) + "\n\n  正在加载数据...\n"
	}

	header := headerStyle.Render(fmt.Sprintf("%s  │  %s  │  #%d", m.title, m.now.Format(clockLayout), m.snapshot.Seq))

	left := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.renderSummary()),
		panelStyle.Render(m.renderPairPnL()),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.renderStats()),
		panelStyle.Render(m.renderAlerts()),
	)
	footer := labelStyle.Render(fmt.Sprintf("更新于 %s  q 退出", m.snapshot.At.Format(clockLayout)))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		footer,
	)
}

func (m model) renderSummary() string {
	s := m.data.Summary
	lines := []string{
		headerStyle.Render("账户概览"),
		fmt.Sprintf("%s %s  %s", labelStyle.Render("Maker 余额"), s.MakerBalance.StringFixed(2), change(s.MakerChange)),
		fmt.Sprintf("%s %s  %s", labelStyle.Render("Taker 余额"), s.TakerBalance.StringFixed(2), change(s.TakerChange)),
		fmt.Sprintf("%s %s  %s", labelStyle.Render("累计盈亏  "), signed(s.TotalPnL), change(s.TotalPnLChange)),
	}
	return strings.Join(lines, "\n")
}

func (m model) renderPairPnL() string {
	t := table.NewWriter()
	t.SetTitle("币对盈亏")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"分组", "币对", "盈亏"})
	for _, s := range m.data.PairPnL {
		for _, p := range s.Points {
			t.AppendRow(table.Row{s.Name, p.X, p.Y.StringFixed(2)})
		}
	}
	if len(m.data.PairPnL) == 0 {
		t.AppendRow(table.Row{"-", "暂无数据", "-"})
	}
	return t.Render()
}

func (m model) renderStats() string {
	t := table.NewWriter()
	t.SetTitle("成交统计")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"UID", "笔数", "胜率", "总盈亏"})
	for _, s := range m.data.Stats {
		t.AppendRow(table.Row{s.UID, s.Trades, s.WinRateString(), s.TotalPnLString()})
	}
	if len(m.data.Stats) == 0 {
		t.AppendRow(table.Row{"-", 0, "-", "暂无数据"})
	}
	return t.Render()
}

func (m model) renderAlerts() string {
	lines := []string{headerStyle.Render("最近告警")}
	if len(m.data.RecentAlerts) == 0 {
		lines = append(lines, labelStyle.Render("暂无告警"))
	}
	for _, e := range m.data.RecentAlerts {
		style := warnStyle
		if e.Level == domain.AlertCritical {
			style = downStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s %s 触发值 %s / 阈值 %s  [%s]",
			e.Time.Format("01-02 15:04"),
			style.Render(e.Level.Label()),
			e.Pair,
			e.TriggerValue.StringFixed(2),
			e.Threshold.StringFixed(2),
			e.Status,
		))
	}
	return strings.Join(lines, "\n")
}

func change(pct decimal.Decimal) string {
	text := pct.StringFixed(2) + "%"
	switch pct.Sign() {
	case 1:
		return upStyle.Render("▲ " + text)
	case -1:
		return downStyle.Render("▼ " + text)
	}
	return labelStyle.Render(text)
}

func signed(v decimal.Decimal) string {
	if v.Sign() < 0 {
		return downStyle.Render(v.StringFixed(2))
	}
	return upStyle.Render(v.StringFixed(2))
}

func (m model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.updateCh
		if !ok {
			return closedMsg{}
		}
		for {
			select {
			case latest, ok := <-m.updateCh:
				if !ok {
					return updateMsg{snapshot: snap}
				}
				snap = latest
			default:
				return updateMsg{snapshot: snap}
			}
		}
	}
}

type tickMsg time.Time

func (m model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
