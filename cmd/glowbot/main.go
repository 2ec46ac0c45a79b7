// Package main is the entry point for the glowbot CLI, a Vietnamese
// cosmetics shopping assistant with supervisor-routed specialist agents
// and per-user preference learning.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vbeauty-labs/glowbot/internal/agent"
	"github.com/vbeauty-labs/glowbot/internal/catalog"
	"github.com/vbeauty-labs/glowbot/internal/config"
	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/logging"
	"github.com/vbeauty-labs/glowbot/internal/orchestrator"
	"github.com/vbeauty-labs/glowbot/internal/prefs"
	"github.com/vbeauty-labs/glowbot/internal/router"
	"github.com/vbeauty-labs/glowbot/internal/tools"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
	log     zerolog.Logger
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	replyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("219"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "glowbot",
		Short: "Glowbot - Vietnamese cosmetics shopping assistant",
		Long: `Glowbot is a chat assistant for cosmetics e-commerce:
  • Supervisor routing to product, order, and general specialists
  • Preference learning from natural conversation
  • Search fallback relaxation when filters return nothing

Start chatting:  glowbot chat`,
		PersistentPreRunE: initLogging,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.glowbot/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Glowbot v%s\n", version)
		},
	})
	rootCmd.AddCommand(chatCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log = logging.New(logging.Config{
		Level:  level,
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	})
	logging.SetGlobal(log)
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

func chatCmd() *cobra.Command {
	var userID string
	var authToken string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg, userID, authToken)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local", "user identifier for preference tracking")
	cmd.Flags().StringVar(&authToken, "token", "", "auth token forwarded to tools")
	return cmd
}

func runChat(ctx context.Context, cfg *config.Config, userID, authToken string) error {
	provider := llm.NewHTTPProvider(cfg.LLM.Endpoint, cfg.LLM.Model,
		llm.WithAPIKey(cfg.LLM.APIKey),
		llm.WithRequestTimeout(cfg.LLM.RequestTimeout))

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	// The standalone CLI runs against the built-in demo catalog instead
	// of an external capability service.
	registry := tools.NewRegistry(catalog.NewProvider(nil, userID, store, log), log)
	defer registry.Close()

	supervisor := router.New(provider, log, router.WithHistoryWindow(cfg.Supervisor.HistoryWindow))
	product := agent.NewProductAgent(provider, registry, log)
	order := agent.NewOrderAgent(provider, registry, log)
	general := agent.NewGeneralAgent(provider, log)
	formatter := orchestrator.NewFormatter(provider, log)
	inference := prefs.NewInference(provider, store, log)

	orc := orchestrator.New(supervisor, product, order, general, formatter, log,
		orchestrator.WithMaxLoops(cfg.Agent.MaxLoops),
		orchestrator.WithInference(inference))

	fmt.Println(infoStyle.Render("Glowbot v" + version + " - gõ 'exit' để thoát"))

	var history []llm.Message
	lastSpecialist := router.Route("")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("chị> "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println(infoStyle.Render("Hẹn gặp lại chị ạ!"))
			break
		}

		result := orc.HandleTurn(ctx, orchestrator.TurnInput{
			UserID:         userID,
			AuthToken:      authToken,
			History:        history,
			Message:        input,
			LastSpecialist: lastSpecialist,
		})

		if result.Content != "" {
			fmt.Println(replyStyle.Render("ngọc> " + result.Content))
		}
		if result.Metadata.Error != "" {
			chatLog := logging.Component(log, "chat")
			chatLog.Warn().Str("error", result.Metadata.Error).Msg("turn ended with error")
		}
		if result.Specialist.IsSpecialist() {
			lastSpecialist = result.Specialist
		}

		history = append(history,
			llm.Message{Role: llm.RoleUser, Content: input},
			llm.Message{Role: llm.RoleAssistant, Content: result.Content},
		)
		if len(history) > 2*router.HistoryWindow {
			history = history[len(history)-2*router.HistoryWindow:]
		}
	}
	return scanner.Err()
}

func openStore(cfg *config.Config) (prefs.Store, error) {
	if cfg.Store.SQLitePath == "" {
		return prefs.NewMemoryStore(), nil
	}
	store, err := prefs.OpenSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	return store, nil
}

func closeStore(store prefs.Store) {
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("closing preference store")
		}
	}
}
