// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/export"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/session"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/ui/components"
)

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the spinner, cursor blink, and the initial model list load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.loadModels())
}

// Update is the main message handler.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		return m, m.handleStreamEvent(msg)

	case StreamClosedMsg:
		// The session's channel is exhausted; nothing left to read.
		return m, nil

	case ModelsLoadedMsg:
		m.handleModelsLoaded(msg)
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.notice = "导出失败: " + msg.Err.Error()
		} else {
			m.notice = "对话记录已导出到 " + msg.Path
		}
		m.syncStatusBar()
		return m, nil

	case ModelSavedMsg:
		if msg.Err != nil {
			m.notice = "保存模型失败: " + msg.Err.Error()
		} else {
			m.notice = fmt.Sprintf("模型 '%s' 已保存", msg.Name)
		}
		m.syncStatusBar()
		return m, nil

	case spinner.TickMsg:
		if !m.streaming() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshViewport()
		return m, cmd
	}

	// Everything else goes to the focused components.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// RESIZE
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) tea.Cmd {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.statusBar.SetWidth(msg.Width)

	// Header, input area, and status bar each take one rendered row block.
	contentHeight := msg.Height - headerHeight - inputHeight - statusHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = contentHeight
	}
	m.input.Width = msg.Width - 4

	m.refreshViewport()
	return nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.mgr.Shutdown(0)
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keyMap.Cancel):
		if m.streaming() {
			m.mgr.Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Clear):
		if !m.streaming() {
			m.log.Reset()
			m.notice = ""
			m.refreshViewport()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Export):
		return m, m.exportTranscript()

	case key.Matches(msg, m.keyMap.Reload):
		return m, m.loadModels()

	case key.Matches(msg, m.keyMap.NextModel):
		if !m.streaming() && len(m.models) > 1 {
			m.modelIdx = (m.modelIdx + 1) % len(m.models)
			m.header.SetModel(m.currentModel())
		}
		return m, nil

	case key.Matches(msg, m.keyMap.SaveModel):
		return m, m.saveCurrentModel()

	case key.Matches(msg, m.keyMap.Up),
		key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp),
		key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed message. Submission is ignored while a stream is
// active; the original interface disables sending in that state too.
func (m *Model) submit() tea.Cmd {
	content := strings.TrimSpace(m.input.Value())
	if content == "" || m.streaming() {
		return nil
	}

	// The snapshot is taken before the user turn lands in the log, so the
	// request carries the new content exactly once.
	messages := m.log.Snapshot(m.cfg.Chat.SystemPrompt, content)
	m.log.AppendUserTurn(content)

	tok, err := m.log.OpenPlaceholder()
	if err != nil {
		m.notice = "上一条回复尚未完成"
		return nil
	}
	m.pendingToken = tok

	m.active = m.mgr.Start(m.currentModel(), messages)
	m.streamText = ""
	m.percent = 0
	m.notice = ""
	m.input.Reset()

	m.syncStatusBar()
	m.refreshViewport()
	m.viewport.GotoBottom()

	return tea.Batch(waitForEvent(m.active), m.spin.Tick)
}

// exportTranscript writes the conversation in the configured format.
func (m *Model) exportTranscript() tea.Cmd {
	turns := m.log.History()
	opts := &export.Options{OutputDir: m.cfg.Export.OutputDir, BaseName: "对话记录"}

	var exporter export.Exporter
	switch m.cfg.Export.Format {
	case "md":
		exporter = export.NewMarkdownExporter(m.currentModel())
	case "html":
		exporter = export.NewHTMLExporter()
	default:
		exporter = export.NewTextExporter()
	}

	return func() tea.Msg {
		path, err := export.ExportToFile(turns, exporter, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// saveCurrentModel adds the active model to the persistent picker list.
func (m *Model) saveCurrentModel() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	name := m.currentModel()
	return func() tea.Msg {
		return ModelSavedMsg{Name: name, Err: store.Add(name)}
	}
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// handleStreamEvent folds one session event into the conversation state.
// Events from a superseded session are dropped; its placeholder was already
// closed when the replacement started.
func (m *Model) handleStreamEvent(msg StreamEventMsg) tea.Cmd {
	if m.active == nil || msg.SessionID != m.active.ID() {
		return nil
	}

	ev := msg.Event
	switch ev.Kind {
	case session.EventDelta:
		m.streamText = ev.Text
		m.percent = ev.Percent
		m.syncStatusBar()
		m.refreshViewport()
		m.viewport.GotoBottom()
		return waitForEvent(m.active)

	case session.EventFinished:
		switch ev.Status {
		case session.StatusCompleted:
			m.log.ResolvePlaceholder(m.pendingToken, ev.Text)
		default:
			m.log.FailPlaceholder(m.pendingToken, ev.Message)
			if ev.Status == session.StatusErrored {
				m.notice = "错误: " + ev.Message
			}
		}
		m.finishStream(ev.Status)
		return nil
	}
	return nil
}

// finishStream clears the live-stream mirror once a session reaches a
// terminal state.
func (m *Model) finishStream(status session.Status) {
	m.active = nil
	m.streamText = ""
	m.percent = 0
	m.lastStatus = status
	m.syncStatusBar()
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// handleModelsLoaded installs a refreshed model list, keeping the current
// selection when it survives the refresh.
func (m *Model) handleModelsLoaded(msg ModelsLoadedMsg) {
	if len(msg.Models) == 0 {
		return
	}

	current := m.currentModel()
	m.models = msg.Models
	m.modelIdx = 0
	for i, name := range m.models {
		if name == current {
			m.modelIdx = i
			break
		}
	}
	m.header.SetModel(m.currentModel())

	if msg.Err != nil {
		m.notice = "模型列表加载失败，使用本地列表"
	}
	m.syncStatusBar()
}

// syncStatusBar mirrors the model state into the status bar component.
func (m *Model) syncStatusBar() {
	switch {
	case m.active != nil && m.active.Status() == session.StatusConnecting:
		m.statusBar.Set(components.StatusConnecting, 0, m.notice)
	case m.streaming():
		m.statusBar.Set(components.StatusStreaming, m.percent, m.notice)
	case m.lastStatus == session.StatusErrored:
		m.statusBar.Set(components.StatusError, 0, m.notice)
	case m.lastStatus == session.StatusCancelled:
		m.statusBar.Set(components.StatusCancelled, 0, m.notice)
	default:
		m.statusBar.Set(components.StatusReady, 0, m.notice)
	}
}
