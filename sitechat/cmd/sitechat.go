// Command-line interface entrypoint for chatting with one page from a terminal
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"sitechat/sitechat/config"
	"sitechat/sitechat/controllers"
	"sitechat/sitechat/services/answer"
	"sitechat/sitechat/services/llm"
	"sitechat/sitechat/services/scraper"
	"sitechat/sitechat/sessions"
	"sitechat/sitechat/utils/color"
	"sitechat/sitechat/utils/logging"
	"sitechat/sitechat/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("config error: "+err.Error()))
		os.Exit(1)
	}

	args := os.Args[1:]
	if len(args) < 2 || args[0] != "ask" {
		usage()
		os.Exit(1)
	}
	targetURL := args[1]
	provider := string(llm.OpenAI)
	if len(args) >= 3 {
		provider = args[2]
	}

	var fetcher *scraper.Scraper
	if cfg.FetchMode == config.FetchModeBrowser {
		bl, err := scraper.NewBrowserLoader(cfg.FetchTimeout)
		if err != nil {
			fmt.Fprintln(os.Stderr, color.ColorError("browser error: "+err.Error()))
			os.Exit(1)
		}
		defer bl.Close()
		fetcher = scraper.NewScraper(bl, cfg.ChunkSize, cfg.ChunkOverlap)
	} else {
		fetcher = scraper.NewScraper(scraper.NewHTTPLoader(cfg.FetchTimeout), cfg.ChunkSize, cfg.ChunkOverlap)
	}
	generator := answer.NewGenerator(llm.NewFactory(llm.Models{
		OpenAI:             cfg.OpenAIModel,
		Anthropic:          cfg.AnthropicModel,
		AnthropicMaxTokens: cfg.AnthropicMaxTokens,
	}))
	ctrl := controllers.NewChatController(sessions.NewMemoryStore(), fetcher, generator)

	sessionID := fmt.Sprintf("cli-%s", uuid.New().String()[:8])
	req := types.SetupRequest{
		WebsiteURL:  targetURL,
		APIKey:      apiKeyFor(provider),
		APIProvider: provider,
	}
	if err := runREPL(context.Background(), ctrl, sessionID, req, os.Stdin, os.Stdout); err != nil {
		logging.ErrorLogger.Error("cli session failed", zap.String("sessionID", sessionID), zap.Error(err))
		fmt.Fprintln(os.Stderr, color.ColorError(err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("sitechat CLI usage:")
	fmt.Println("  sitechat ask <url> [openai|anthropic]   # chat about one web page")
	fmt.Println()
	fmt.Println("The API key is read from OPENAI_API_KEY or ANTHROPIC_API_KEY.")
}

func apiKeyFor(provider string) string {
	switch llm.ProviderKind(provider) {
	case llm.OpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case llm.Anthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// runREPL configures the session and answers one question per input line
// until EOF, "exit" or "quit".
func runREPL(ctx context.Context, ctrl *controllers.ChatController, sessionID string, req types.SetupRequest, in io.Reader, out io.Writer) error {
	msg, err := ctrl.Setup(ctx, sessionID, req)
	if err != nil {
		return err
	}
	if msg != "" {
		return fmt.Errorf("%s", msg)
	}
	sess, err := ctrl.Session(ctx, sessionID)
	if err != nil {
		return err
	}

	title := sess.WebsiteTitle
	if title == "" {
		title = sess.WebsiteURL
	}
	fmt.Fprintln(out, color.ColorInfo("Chatting about: "+title))
	if sess.FetchFailed {
		fmt.Fprintln(out, color.ColorWarning(sess.WebsiteContent))
	}
	fmt.Fprintln(out, "Type your question or 'exit' to quit.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, color.ColorPrompt("sitechat> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if line == "" {
			continue
		}

		sess, err := ctrl.Ask(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintln(out, color.ColorError("Error: "+err.Error()))
			continue
		}
		last := sess.ChatHistory[len(sess.ChatHistory)-1]
		fmt.Fprintln(out, color.ColorAnswer(last.Content))
		fmt.Fprintln(out)
	}
}
