// SmrtLocal Assistant - a terminal chat client for local LLM servers.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/config"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/lmstudio"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/storage"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("SmrtLocal Assistant %s (%s, %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}
	client := lmstudio.NewClientWithConfig(&lmstudio.ClientConfig{
		BaseURL:       cfg.Server.BaseURL,
		ChatPath:      cfg.Server.ChatPath,
		ModelsPath:    cfg.Server.ModelsPath,
		Timeout:       time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		DefaultModel:  cfg.Chat.DefaultModel,
		Temperature:   cfg.Chat.Temperature,
		MaxTokens:     cfg.Chat.MaxTokens,
		AssumedBudget: cfg.Chat.AssumedBudget,
	})

	// Model persistence is optional; the picker falls back to the built-in
	// list when the store cannot be created.
	store, err := storage.NewModelStore()
	if err != nil {
		store = nil
	}

	m := chat.New(cfg, client, store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "运行失败: %v\n", err)
		os.Exit(1)
	}

	// A stream may still be winding down after quit.
	m.Manager().Shutdown(0)
}

func printUsage() {
	fmt.Println(`SmrtLocal Assistant - 本地 LLM 聊天客户端

用法:
  smrtlocal            启动聊天界面
  smrtlocal version    显示版本
  smrtlocal help       显示帮助

环境变量:
  SMRTLOCAL_URL            服务器地址 (默认 http://127.0.0.1:1234)
  SMRTLOCAL_MODEL          默认模型
  SMRTLOCAL_SYSTEM_PROMPT  系统提示词
  SMRTLOCAL_TEMPERATURE    采样温度
  SMRTLOCAL_MAX_TOKENS     最大生成长度
  SMRTLOCAL_EXPORT_DIR     导出目录
  SMRTLOCAL_EXPORT_FORMAT  导出格式 (txt|md|html)
  SMRTLOCAL_THEME          主题 (dark|light)

配置文件: ~/.smrtlocal/config.toml`)
}
