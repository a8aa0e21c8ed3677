// Package answer builds the grounded prompt and routes it to the session's provider.
package answer

import (
	"context"
	"fmt"

	"sitechat/sitechat/services/llm"
	"sitechat/sitechat/utils/logging"

	"go.uber.org/zap"
)

// InvalidProviderAnswer is returned as the answer text itself when a session
// names a provider that is not supported.
const InvalidProviderAnswer = "Invalid API provider selected."

type Credentials struct {
	APIKey   string
	Provider string
}

type Generator struct {
	newProvider llm.Factory
}

func NewGenerator(factory llm.Factory) *Generator {
	return &Generator{newProvider: factory}
}

// BuildPrompt embeds the whole page content and the question verbatim.
func BuildPrompt(question, content string) string {
	return fmt.Sprintf(`
The following is content from a website:
%s

Based on this content, please answer the user's question:
%s
`, content, question)
}

// Generate makes exactly one inference call. Provider errors are returned to
// the caller untouched apart from wrapping.
func (g *Generator) Generate(ctx context.Context, question, content string, creds Credentials) (string, error) {
	kind, ok := llm.ParseProviderKind(creds.Provider)
	if !ok {
		logging.AppLogger.Warn("unsupported provider in session", zap.String("provider", creds.Provider))
		return InvalidProviderAnswer, nil
	}
	provider, err := g.newProvider(kind, creds.APIKey)
	if err != nil {
		return "", fmt.Errorf("build %s provider: %w", kind, err)
	}
	out, err := provider.Complete(ctx, BuildPrompt(question, content))
	if err != nil {
		return "", err
	}
	return out, nil
}
