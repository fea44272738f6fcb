package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	dg "github.com/bwmarrin/discordgo"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/clock"
	"github.com/benjamonnguyen/tempo/discordgo"
	"github.com/benjamonnguyen/tempo/session"
	"github.com/benjamonnguyen/tempo/settings"
	"github.com/benjamonnguyen/tempo/sqlite"
)

const (
	RepoURL = "https://github.com/benjamonnguyen/tempo"
	Version = "0.1.0"
)

func main() {
	isProd := flag.Bool("p", false, "is production environment")
	historyLimit := flag.Int("history", 0, "print the last N sessions and exit")
	flag.Parse()

	// config
	cfg, err := tempo.LoadConfig(*isProd)
	if err != nil {
		log.Fatal(err)
	}

	// logger; the terminal belongs to the UI so logs go to a file
	log.SetLevel(cfg.LogLevel)
	if cfg.LogLevel == log.DebugLevel {
		log.SetReportCaller(true)
	}
	if *historyLimit == 0 {
		logPath := filepath.Join(filepath.Dir(cfg.DatabaseURL), "tempo.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer f.Close() //nolint
			log.SetOutput(f)
		}
	}
	topCtx, topCtxC := context.WithCancel(context.Background())
	defer topCtxC()

	// db
	log.Info("opening db", "url", cfg.DatabaseURL)
	db, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed database open", "err", err)
	}
	defer db.Close() //nolint
	if err := db.RunMigrations(); err != nil {
		log.Fatal("failed migration", "err", err)
	}
	tx, dbGetter := txStdLib.NewTransactor(
		db.DB(),
		txStdLib.NestedTransactionsSavepoints,
	)
	sessionRepo := sqlite.NewSessionRepo(dbGetter, *log.Default())

	if *historyLimit > 0 {
		panicif(printHistory(topCtx, os.Stdout, sessionRepo, *historyLimit))
		return
	}

	// settings
	store := settings.NewStore(cfg.SettingsPath)
	persisted, err := store.Load()
	if err != nil {
		log.Warn("failed to load settings, using defaults", "path", store.Path(), "err", err)
		persisted = settings.Defaults()
	}

	// timer
	engine := clock.NewEngine(clock.System(), *log.Default(), clock.WithInterval(cfg.TickInterval))
	machine := session.NewMachine(engine, clock.System(), *log.Default(), persisted.Mode, persisted.Settings)

	// discord
	var notifier sessionNotifier
	if cfg.DiscordWebhookURL != "" {
		cl, err := dg.New("")
		panicif(err)
		cl.Client = &http.Client{Timeout: 20 * time.Second}
		cl.UserAgent = fmt.Sprintf("%s (%s, v%s)", cfg.BotName, RepoURL, Version)
		n, err := discordgo.NewWebhookNotifier(cl, cfg.DiscordWebhookURL, cfg.BotName, *log.Default())
		if err != nil {
			log.Fatal("invalid discord webhook", "err", err)
		}
		notifier = n
	}

	// collaborators
	var wg sync.WaitGroup
	wg.Go(func() {
		if err := engine.Run(topCtx); err != nil && err != context.Canceled {
			log.Error("clock engine stopped", "err", err)
		}
	})
	wg.Go(func() {
		if err := machine.Run(topCtx); err != nil && err != context.Canceled {
			log.Error("session machine stopped", "err", err)
		}
	})
	recorder := newHistoryRecorder(sessionRepo, tx, notifier, *log.Default())
	recorder.Start(topCtx, machine.Subscribe(32))
	cues := newCuePlayer(newTerminalBell(os.Stderr, *log.Default()), *log.Default())
	cues.Start(machine.Subscribe(32))
	saver := newSettingsSaver(store, *log.Default())
	saver.Start(machine.Subscribe(8))

	// ui
	p := tea.NewProgram(newModel(machine, machine.Subscribe(32)), tea.WithAltScreen(), tea.WithContext(topCtx))
	if _, err := p.Run(); err != nil && err != tea.ErrProgramKilled {
		log.Error("ui exited", "err", err)
	}

	// graceful shutdown
	log.Info("terminating " + cfg.BotName)
	shutdownTimeout, shutdownTimeoutC := context.WithTimeout(context.Background(), 10*time.Second)
	go func() {
		shutdown(machine, topCtxC, recorder, saver, cues)
		wg.Wait()
		shutdownTimeoutC()
	}()
	<-shutdownTimeout.Done()
	if shutdownTimeout.Err() != context.Canceled {
		log.Error("failed to shut down gracefully", "err", shutdownTimeout.Err())
	}
}

type waiter interface {
	Wait()
}

// shutdown finishes the active session and lets every collaborator drain
// its signals before the shared context is cancelled.
func shutdown(machine *session.Machine, cancel context.CancelFunc, collaborators ...waiter) {
	machine.Stop()
	machine.Close()
	for _, c := range collaborators {
		c.Wait()
	}
	cancel()
}

func panicif(err error) {
	if err != nil {
		panic(err)
	}
}
