package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"

	"github.com/marcus/good-drawer/internal/config"
)

// Service turns drawing prompts into streamed SVG fragments through an
// Ollama-backed chain. One chain is compiled per model name and reused across
// requests on the same instance.
type Service struct {
	cfg    config.EngineConfig
	client *api.Client

	mu     sync.Mutex
	chains map[string]compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the chain for the default model. Construction needs no
// live backend; connectivity failures surface per request.
func NewService(ctx context.Context, cfg config.EngineConfig) (*Service, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_BASE_URL %q: %w", cfg.BaseURL, err)
	}

	s := &Service{
		cfg:    cfg,
		client: api.NewClient(base, http.DefaultClient),
		chains: make(map[string]compose.Runnable[map[string]any, *schema.Message]),
	}

	if _, err := s.chainFor(ctx, cfg.Model); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultModel returns the configured default model name.
func (s *Service) DefaultModel() string {
	return s.cfg.Model
}

// Stream starts one generation for the given prompt and returns the fragment
// stream. An empty model name selects the default. The caller owns the
// reader and must close it.
func (s *Service) Stream(ctx context.Context, userPrompt, modelName string) (*schema.StreamReader[*schema.Message], error) {
	if modelName == "" {
		modelName = s.cfg.Model
	}

	chain, err := s.chainFor(ctx, modelName)
	if err != nil {
		return nil, err
	}

	stream, err := chain.Stream(ctx, chainInput(userPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to stream drawing chain: %w", err)
	}
	return stream, nil
}

func (s *Service) chainFor(ctx context.Context, modelName string) (compose.Runnable[map[string]any, *schema.Message], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chain, ok := s.chains[modelName]; ok {
		return chain, nil
	}

	chatModel, err := s.cfg.NewChatModel(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model %q: %w", modelName, err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile drawing chain for %q: %w", modelName, err)
	}

	s.chains[modelName] = runnable
	log.Debug().Str("model", modelName).Msg("compiled drawing chain")
	return runnable, nil
}
