package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ultracoach/internal/agent"
	"ultracoach/internal/config"
	"ultracoach/internal/store"
	"ultracoach/internal/strava"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the coach in an interactive REPL",
		Long:  "Interactive coaching session. Requires OPENAI_API_KEY; Strava tools are enabled when STRAVA_* credentials are set.",
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

// loadConfig loads .env (when present) and the environment. Shared by the
// chat and serve commands.
func loadConfig() *config.Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using environment", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

// buildAgent wires the OpenAI provider and the optional Strava client into
// an agent backed by the given store.
func buildAgent(ctx context.Context, cfg *config.Config, s store.Store) (*agent.Agent, error) {
	if err := cfg.ValidateAgent(); err != nil {
		return nil, err
	}

	provider := agent.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)

	var acts agent.ActivitySource
	if cfg.StravaConfigured() {
		acts = newStravaClient(cfg)
		slog.Info("strava tools enabled")
	} else {
		slog.Info("strava not configured, running memory-only")
	}

	return agent.New(ctx, provider, s, acts)
}

func newStravaClient(cfg *config.Config) *strava.Client {
	return strava.NewClient(strava.Credentials{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RefreshToken: cfg.StravaRefreshToken,
	})
}

func runChat(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	coach, err := buildAgent(cmd.Context(), cfg, s)
	if err != nil {
		exitErr("chat", err)
	}

	fmt.Println("ultracoach - type your message, 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		answer, err := coach.Reply(cmd.Context(), input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", answer)
	}
}
