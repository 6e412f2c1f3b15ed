package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/quickbar/internal/enhance"
	"github.com/csheth/quickbar/internal/settings"
	"github.com/csheth/quickbar/internal/toolbar"
	"github.com/csheth/quickbar/internal/tui"
)

func main() {
	settingsPath := flag.String("settings", "quickbar.json", "path to the persisted settings file")
	buttonsPath := flag.String("buttons", "", "TOML bar definitions; reloaded live when the file changes")
	baseURL := flag.String("base", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	modelName := flag.String("model", "gpt-4o-mini", "model for enhance requests")
	listModels := flag.Bool("list-models", false, "print the models the endpoint advertises and exit")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	noStream := flag.Bool("no-stream", false, "wait for complete responses instead of streaming")
	userName := flag.String("user", "You", "your name in the conversation")
	character := flag.String("character", "", "chat partner's name")
	personaDesc := flag.String("persona", "", "free-text description of who you write as")
	contextTurns := flag.Int("context", 8, "conversation turns sent as enhance context")
	logPath := flag.String("log", "", "append debug logs to this file")
	flag.Parse()

	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "quickbar")
		if err != nil {
			fmt.Println("failed to open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	store, err := settings.Open(*settingsPath, map[string]any{
		"model":       *modelName,
		"temperature": 0.8,
		"context":     *contextTurns,
		"user":        *userName,
		"character":   *character,
		"persona":     *personaDesc,
		"api_key":     "",
	})
	if err != nil {
		fmt.Println("failed to open settings:", err)
		os.Exit(1)
	}

	// A flag given explicitly replaces the stored value; otherwise the
	// last persisted choice wins.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			store.Set("model", *modelName)
		case "context":
			store.Set("context", *contextTurns)
		case "user":
			store.Set("user", *userName)
		case "character":
			store.Set("character", *character)
		case "persona":
			store.Set("persona", *personaDesc)
		}
	})

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = store.String("api_key", "")
	}
	client := enhance.NewClient(*baseURL, apiKey)

	if *listModels {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		models, err := client.ListModels(ctx)
		if err != nil {
			fmt.Println("failed to list models:", err)
			os.Exit(1)
		}
		for _, id := range models {
			fmt.Println(id)
		}
		return
	}

	bars, err := toolbar.Load(*buttonsPath)
	if err != nil {
		fmt.Println("failed to load bar definitions:", err)
		os.Exit(1)
	}

	var watcher *toolbar.Watcher
	if *buttonsPath != "" {
		watcher, err = toolbar.Watch(*buttonsPath)
		if err != nil {
			fmt.Println("bar reload disabled:", err)
		} else {
			defer watcher.Close()
		}
	}

	params := storedParams(store)

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Settings: store,
			Bars:     bars,
			BarWatch: watcher,
			Client:   client,
			Model:    store.String("model", *modelName),
			Persona: enhance.Persona{
				User:        store.String("user", *userName),
				Character:   store.String("character", *character),
				Description: store.String("persona", *personaDesc),
			},
			Params:  params,
			Context: store.Int("context", *contextTurns),
			Stream:  !*noStream,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
	if err := store.Flush(); err != nil {
		fmt.Println("failed to save settings:", err)
		os.Exit(1)
	}
}
