package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"github.com/kodell/finchat/internal/agent"
	"github.com/kodell/finchat/internal/config"
	"github.com/kodell/finchat/internal/llm"
	"github.com/kodell/finchat/internal/providers"
	"github.com/kodell/finchat/internal/tools"
)

const (
	Version = "0.1.0"

	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// Run starts the interactive chat interface
func Run(cfg *config.Config) error {
	printWelcome()

	if !cfg.IsAPIKeyConfigured() {
		return promptAPIKey(cfg)
	}

	llmClient := llm.New(llm.Options{
		APIKey:       cfg.Model.APIKey,
		Model:        cfg.Model.Model,
		MaxTokens:    cfg.Model.MaxTokens,
		SystemPrompt: cfg.SystemPrompt(),
	})

	registry := newRegistry(cfg)

	ag := agent.New(llmClient, registry,
		agent.WithMaxToolIterations(cfg.Model.MaxToolIterations),
		agent.WithToolCallHandler(toolCallOutput),
	)

	return runREPL(ag)
}

// newRegistry wires the upstream data providers into the tool catalog
func newRegistry(cfg *config.Config) *tools.Registry {
	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	return tools.NewDefaultRegistry(tools.Providers{
		Weather: providers.NewOpenMeteo(
			cfg.Providers.GeocodingBaseURL,
			cfg.Providers.WeatherBaseURL,
			cfg.Providers.UserAgent,
			timeout,
		),
		Market: providers.NewAlphaVantage(
			cfg.Providers.AlphaVantageBaseURL,
			cfg.Providers.AlphaVantageAPIKey,
			cfg.Providers.UserAgent,
			timeout,
		),
		Econ: providers.NewFRED(
			cfg.Providers.FREDBaseURL,
			cfg.Providers.FREDAPIKey,
			cfg.Providers.UserAgent,
			timeout,
		),
	})
}

// printWelcome prints welcome message
func printWelcome() {
	fmt.Printf("\n%s📈 FinChat v%s%s - Markets, Economics and Weather Assistant\n", colorCyan, Version, colorReset)
	fmt.Printf("%sType /help for help, /exit or quit to leave%s\n\n", colorGray, colorReset)
}

// promptAPIKey prompts user to configure the model API key
func promptAPIKey(cfg *config.Config) error {
	fmt.Printf("%s⚠️  Anthropic API key not configured%s\n\n", colorYellow, colorReset)

	rl, err := readline.New("Please enter your Anthropic API key: ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	apiKey, err := rl.Readline()
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	cfg.Model.APIKey = apiKey
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\n%s✅ API key saved%s\n\n", colorGreen, colorReset)

	return Run(cfg)
}

// getHistoryFilePath returns the readline history file path
func getHistoryFilePath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// runREPL runs the interactive loop with readline support
func runREPL(ag *agent.Agent) error {
	rlConfig := &readline.Config{
		Prompt:          fmt.Sprintf("%sYou: %s", colorGreen, colorReset),
		HistoryFile:     getHistoryFilePath(),
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:      true,
		DisableAutoSaveHistory: false,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Printf("\n\n%sGoodbye! 👋%s\n", colorCyan, colorReset)
		cancel()
		rl.Close()
		os.Exit(0)
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Printf("\n%sPress Ctrl+C again or type /exit to quit%s\n", colorYellow, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Printf("\n%sGoodbye! 👋%s\n", colorCyan, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if cmd, ok := bareCommand(input); ok {
			input = cmd
		}

		if strings.HasPrefix(input, "/") {
			if handleCommand(input, ag) {
				continue
			}
			return nil // /exit command
		}

		processInput(ctx, ag, input)
	}
}

// bareCommand maps reserved words typed without the slash to their
// command equivalents
func bareCommand(input string) (string, bool) {
	switch strings.ToLower(input) {
	case "exit", "quit", "bye":
		return "/exit", true
	case "help":
		return "/help", true
	case "clear":
		return "/clear", true
	}
	return "", false
}

// processInput sends one user message through the agent
func processInput(ctx context.Context, ag *agent.Agent, input string) {
	fmt.Printf("\n%sFinChat: %s", colorBlue, colorReset)

	answer, err := ag.Chat(ctx, input)
	if err != nil {
		fmt.Printf("\n%s❌ Error: %v%s\n", colorRed, err, colorReset)
	} else {
		fmt.Print(answer)
	}

	fmt.Println()
	fmt.Println()
}

// handleCommand handles built-in commands, returns true to continue loop, false to exit
func handleCommand(cmd string, ag *agent.Agent) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true
	}

	command := strings.ToLower(parts[0])

	switch command {
	case "/help":
		printHelp()
		return true

	case "/clear", "/new":
		ag.Clear()
		fmt.Printf("%s✅ Conversation cleared%s\n", colorGreen, colorReset)
		return true

	case "/config":
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("%s❌ Failed to load config: %v%s\n", colorRed, err, colorReset)
		} else {
			fmt.Println(cfg.String())
		}
		return true

	case "/exit", "/quit", "/q":
		fmt.Printf("%sGoodbye! 👋%s\n", colorCyan, colorReset)
		return false

	default:
		fmt.Printf("%s❓ Unknown command: %s%s\n", colorYellow, cmd, colorReset)
		fmt.Println("Type /help for available commands")
		return true
	}
}

// printHelp prints help information
func printHelp() {
	fmt.Printf(`
%s📚 FinChat Help%s

%sBuilt-in Commands:%s
  /help    - Show this help message
  /clear   - Clear current conversation
  /config  - Show current configuration
  /exit    - Exit program (or type exit, quit, bye)

%sAvailable Tools:%s
  • get_city_weather        - Current weather for a city
  • get_stock_quote         - Real-time stock quote
  • get_stock_daily         - Daily price series
  • get_sma / get_rsi       - Technical indicators
  • get_fx_rate             - Currency exchange rate
  • get_crypto_rate         - Cryptocurrency exchange rate
  • search_economic_series  - Search FRED economic series
  • get_economic_indicator  - FRED series observations
  • ...and more FRED catalog, tag and release tools

%sExamples:%s
  "What's the weather in Tokyo?"
  "Get me a quote for AAPL and its 14-day RSI"
  "How has US unemployment changed this year?"
  "What's the USD to EUR exchange rate?"

`, colorCyan, colorReset, colorYellow, colorReset, colorYellow, colorReset, colorYellow, colorReset)
}

// toolCallOutput renders each tool invocation as it happens
func toolCallOutput(name string, args json.RawMessage, result tools.Result) {
	fmt.Printf("\n%s🔧 Calling tool: %s%s\n", colorYellow, name, colorReset)

	if len(args) > 0 && string(args) != "{}" {
		fmt.Printf("%s   Args: %s%s\n", colorGray, string(args), colorReset)
	}

	if result.IsError {
		fmt.Printf("%s   Status: ❌ Failed - %s%s\n", colorRed, result.Content, colorReset)
	} else {
		fmt.Printf("%s   Status: ✅ Done%s\n", colorGreen, colorReset)
	}

	fmt.Println()
}
