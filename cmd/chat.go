package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/schedbot/schedbot/internal/agent"
	"github.com/schedbot/schedbot/internal/calendar"
	"github.com/schedbot/schedbot/internal/logging"
	"github.com/schedbot/schedbot/internal/meetinglog"
	"github.com/schedbot/schedbot/internal/server"
	"github.com/schedbot/schedbot/internal/tools/common"
	"github.com/schedbot/schedbot/internal/tools/schedule_tools"
)

const chatGreeting = "Hello! I'm your Meeting Scheduler Agent. How can I help you organize your calendar today?"

// quickActions maps slash shortcuts to the phrasing the assistant expects.
var quickActions = map[string]string{
	"/calendar": "Check my scheduled dates",
	"/schedule": "I want to schedule a meeting",
	"/free":     "Find approved dates (free slots) for today",
}

func newChatCmd() *cobra.Command {
	var (
		debugMode bool
		account   string
		model     string
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive scheduling conversation",
		Long: `Start an interactive chat session with the meeting scheduler.

The assistant understands natural language requests like:
  - "What do I have coming up this week?"
  - "Find approved dates for next Friday"
  - "Schedule a meeting called Standup tomorrow at 9am with a@example.com"

Shortcuts: /calendar lists scheduled dates, /free finds free slots for
today, /schedule starts scheduling a meeting, /clear resets the
conversation, /exit quits.

Requires GOOGLE_API_KEY for the language model and a Google Calendar token
(run 'schedbot auth'). A .env file in the working directory is loaded if
present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("meeting-log") {
				if path := os.Getenv("SCHEDBOT_DB"); path != "" {
					dbPath = path
				}
			}
			return runChat(cmd, debugMode, account, model, dbPath)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&model, "model", "", "Language model to use (default: "+agent.DefaultModel+")")
	cmd.Flags().StringVar(&dbPath, "meeting-log", meetinglog.DefaultPath, "Path of the meeting log database file. Can also use SCHEDBOT_DB env var.")

	return cmd
}

func runChat(cmd *cobra.Command, debugMode bool, account, model, dbPath string) error {
	_ = godotenv.Load()

	level := slog.LevelWarn
	if debugMode {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(level)

	ctx := cmd.Context()

	if calendar.HasTokenForAccount(account) {
		fmt.Println("✓ Authenticated with Google Calendar")
	} else {
		fmt.Printf("⚠ Not authenticated with Google Calendar for account %q.\n", account)
		fmt.Println("  Calendar requests will fail until you run 'schedbot auth'.")
	}

	serverContext, err := server.NewServerContext(ctx, meetinglog.NewStore(dbPath), logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	registry, err := schedule_tools.NewToolset(
		server.NewGateway(serverContext, account),
		serverContext.Store(),
		logger,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to build toolset: %w", err)
	}
	registry, err = common.InstrumentAll(registry, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to instrument toolset: %w", err)
	}

	completer, err := agent.NewGeminiCompleter(ctx, model)
	if err != nil {
		return err
	}
	dispatcher := agent.NewDispatcher(completer, registry, logger)

	fmt.Println()
	fmt.Println("Bot: " + chatGreeting)
	fmt.Println()

	var transcript []agent.Message
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "/exit" || input == "/quit":
			fmt.Println("Bot: Goodbye!")
			return nil
		case input == "/clear":
			transcript = nil
			fmt.Println("Bot: Conversation cleared.")
			fmt.Println()
			continue
		}

		if phrase, ok := quickActions[input]; ok {
			input = phrase
		}

		reply, updated := dispatcher.Run(ctx, transcript, input)
		transcript = updated

		fmt.Println("Bot: " + reply)
		fmt.Println()
	}
}
