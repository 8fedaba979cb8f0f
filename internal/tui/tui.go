// Package tui 终端版看板：订阅 dashboard 视图并用 bubbletea 渲染
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/views"
	"github.com/betbot/opsboard/pkg/logger"
)

// Options 终端看板配置
type Options struct {
	Title     string
	Selection filter.Selection
	AltScreen bool
}

// Run 打开 dashboard 视图并阻塞运行终端界面，直到用户退出或 ctx 取消
func Run(ctx context.Context, registry *views.Registry, opts Options) error {
	v, err := registry.Open(ctx, views.Dashboard, opts.Selection)
	if err != nil {
		return fmt.Errorf("打开 dashboard 视图失败: %w", err)
	}
	defer v.Close()

	title := opts.Title
	if title == "" {
		title = "交易运营看板"
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(title, v.Updates()), progOpts...)

	logger.WithField("module", "tui").Infof("终端看板启动 view=%s", v.Name())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
