package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vakya-ai/Anushandhan/internal/app"
	"github.com/vakya-ai/Anushandhan/internal/tui"
)

const (
	version = "1.0.0"
	repoURL = "https://github.com/vakya-ai/Anushandhan"
)

type runtime struct {
	cfg     app.Config
	store   *app.Store
	orch    *app.Orchestrator
	batcher *app.Batcher
	prefs   *app.SnapshotStore
	theme   string
}

func buildRuntime(logToStderr bool) (*runtime, func(), error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, nil, err
	}

	log := app.NopLogger()
	if logToStderr {
		log = app.NewLogger(os.Stderr)
	}

	auth := app.StaticTokenProvider{BearerToken: cfg.Token, Subject: cfg.UserID}
	client := app.NewClient(cfg.BaseURL, auth)
	store := app.NewStore()
	prefs := app.NewSnapshotStore(cfg.DataDir)
	sched := app.NewScheduler()

	reconciler := app.NewReconciler(store, client, prefs, auth, log)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	reconciler.Bootstrap(ctx)
	cancel()
	reconciler.Start()

	batcher := app.NewBatcher(client, sched, cfg.FlushInterval(), cfg.BatchThreshold, log)
	orch := app.NewOrchestrator(store, client, sched, batcher, auth, log, app.OrchestratorConfig{
		AnimateInterval: cfg.AnimateInterval(),
		PollInterval:    cfg.PollInterval(),
		MaxPollAttempts: cfg.MaxPollAttempts,
	})

	theme := prefs.LoadTheme()
	if theme == "" {
		theme = cfg.Theme
	}

	cleanup := func() {
		orch.Close()
		batcher.Close()
		reconciler.Stop()
	}
	return &runtime{cfg: cfg, store: store, orch: orch, batcher: batcher, prefs: prefs, theme: theme}, cleanup, nil
}

func runTUI() error {
	rt, cleanup, err := buildRuntime(false)
	if err != nil {
		return err
	}
	defer cleanup()

	p := tea.NewProgram(tui.New(rt.store, rt.orch, rt.prefs, rt.theme), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runGenerate(topic, githubURL string, words int, sections []string) error {
	rt, cleanup, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer cleanup()

	input := app.GenerateInput{Topic: topic, WordCount: words, Sections: sections}
	if githubURL != "" {
		input.SourceType = app.SourceTypeGitHub
		input.SourceURL = githubURL
	}
	if err := rt.orch.Submit(context.Background(), input); err != nil {
		return err
	}

	for {
		p := rt.orch.Progress()
		switch p.Phase {
		case app.PhaseResolved:
			sess, ok := rt.store.Get(p.SessionID)
			if !ok {
				return fmt.Errorf("session %s missing after generation", p.SessionID)
			}
			for i := len(sess.Messages) - 1; i >= 0; i-- {
				if sess.Messages[i].Role == app.RoleAssistant {
					fmt.Println(sess.Messages[i].PaperContent)
					return nil
				}
			}
			return fmt.Errorf("no generated content in session %s", p.SessionID)
		case app.PhaseFailed:
			return p.Err
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func runSessions() error {
	rt, cleanup, err := buildRuntime(false)
	if err != nil {
		return err
	}
	defer cleanup()

	state := rt.store.State()
	if len(state.Chats) == 0 {
		fmt.Println("no sessions")
		return nil
	}
	for _, c := range state.Chats {
		marker := " "
		if c.ID == state.SelectedChatID {
			marker = "*"
		}
		topic := c.Topic
		if topic == "" {
			topic = "(untitled)"
		}
		fmt.Printf("%s %s  %s  %d messages\n", marker, c.CreatedAt.Format("2006-01-02 15:04"), topic, len(c.Messages))
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:     "anushandhan",
		Short:   "Anushandhan - AI research paper generation client",
		Long:    "Anushandhan generates long-form research papers from a topic or a GitHub repository.\n\nRun without arguments for the interactive TUI.\n\nFor more information, visit: " + repoURL,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	var githubURL string
	var words int
	var sections []string
	generate := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a paper and print it to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(strings.Join(args, " "), githubURL, words, sections)
		},
	}
	generate.Flags().StringVar(&githubURL, "github", "", "GitHub repository URL to analyze")
	generate.Flags().IntVar(&words, "words", 0, "target word count")
	generate.Flags().StringSliceVar(&sections, "sections", nil, "paper sections to generate")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions()
		},
	}

	root.AddCommand(generate, sessionsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
