// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/config"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/lmstudio"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/model"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/session"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/storage"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/ui/components"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It owns the conversation
// log, the active streaming session, and the UI components.
type Model struct {
	// Configuration and styling
	cfg   *config.Config
	theme *styles.Theme

	// Backend
	client *lmstudio.Client
	mgr    *session.Manager
	store  *storage.ModelStore // nil when persistence is unavailable

	// Conversation
	log          *model.ConversationLog
	pendingToken model.PlaceholderToken

	// Active stream state, mirrored from session events for rendering.
	active     *session.Session
	streamText string
	percent    int
	lastStatus session.Status

	// Model picker
	models   []string
	modelIdx int

	// UI components
	viewport  viewport.Model
	input     textinput.Model
	spin      spinner.Model
	header    *components.Header
	statusBar *components.StatusBar
	keyMap    KeyMap

	// Dimensions
	width  int
	height int
	ready  bool

	// Transient status line, e.g. export results.
	notice string
}

// New creates the chat model.
func New(cfg *config.Config, client *lmstudio.Client, store *storage.ModelStore) *Model {
	theme := styles.NewThemeFor(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "输入消息..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 0
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	m := &Model{
		cfg:       cfg,
		theme:     theme,
		client:    client,
		mgr:       session.NewManager(client),
		store:     store,
		log:       model.NewConversationLog(),
		input:     input,
		spin:      spin,
		header:    components.NewHeader(theme),
		statusBar: components.NewStatusBar(theme),
		keyMap:    DefaultKeyMap(),
		models:    []string{cfg.Chat.DefaultModel},
	}
	m.header.SetModel(m.currentModel())
	return m
}

// Manager exposes the session manager so main can shut it down on exit.
func (m *Model) Manager() *session.Manager {
	return m.mgr
}

// currentModel returns the model the next request will use.
func (m *Model) currentModel() string {
	if len(m.models) == 0 {
		return m.cfg.Chat.DefaultModel
	}
	if m.modelIdx < 0 || m.modelIdx >= len(m.models) {
		m.modelIdx = 0
	}
	return m.models[m.modelIdx]
}

// streaming reports whether a session is currently active.
func (m *Model) streaming() bool {
	return m.active != nil && !m.active.Status().Terminal()
}
