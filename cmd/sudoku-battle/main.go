package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ayumu-k/sudoku-battle-client/internal/client"
	"github.com/ayumu-k/sudoku-battle-client/internal/conn"
	"github.com/ayumu-k/sudoku-battle-client/internal/roomapi"
)

func main() {
	// .env is optional; flags win over the environment.
	_ = godotenv.Load()

	defaultServer := os.Getenv("SUDOKU_BATTLE_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}

	server := flag.String("server", defaultServer, "server base URL")
	room := flag.String("room", "", "room code to join (4 characters)")
	create := flag.Bool("create", false, "create a new room instead of joining")
	maxStepGap := flag.Int("max-step-gap", 1, "max step gap before the removal power-up unlocks")
	cooldownSec := flag.Int("cooldown", 10, "removal power-up cooldown in seconds")
	difficulty := flag.String("difficulty", "EASY", "puzzle difficulty: EASY, MEDIUM, HARD or EXPERT")
	logPath := flag.String("log", "sudoku-battle.log", "log file path")
	flag.Parse()

	log, err := fileLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	code := strings.ToUpper(strings.TrimSpace(*room))
	if *create {
		code, err = roomapi.NewClient(*server).CreateRoom(context.Background(), roomapi.CreateRoomRequest{
			MaxStepGap:      *maxStepGap,
			CooldownSeconds: *cooldownSec,
			Difficulty:      strings.ToUpper(*difficulty),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "create room: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("room created: %s\n", code)
	}
	if !roomapi.ValidCode(code) {
		fmt.Fprintf(os.Stderr, "room code %q is not valid (want 4 alphanumeric characters)\n", code)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The conn feeds frames into the client; the client publishes actions
	// back through the conn. Build the conn first with a late-bound
	// frame handler so the cycle resolves.
	var cl *client.Client
	cn := conn.New(conn.Config{
		Room:    code,
		Dial:    conn.SockJSDialer(*server),
		OnFrame: func(body []byte) { cl.OnFrame(body) },
		Log:     log.Named("conn"),
	})
	cl = client.New(ctx, cn, log.Named("client"),
		client.WithClipboard(func(text string) { _ = clipboard.WriteAll(text) }))

	go cn.Run(ctx)

	views := make(chan client.View, 8)
	cl.Inbox() <- client.Subscribe{ID: "tui", Outbox: views}

	p := tea.NewProgram(newModel(code, cn, cl, views), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}

	// Cancelling the context tears the connection down, which publishes
	// the best-effort LEAVE.
	cancel()
}

func fileLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
