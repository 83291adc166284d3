package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"solana-terminal/internal/domain"
	"solana-terminal/internal/integrations/backend"
	"solana-terminal/internal/intent"
	"solana-terminal/internal/logger"
	"solana-terminal/internal/metrics"
	"solana-terminal/internal/report"
	"solana-terminal/internal/stream"
)

// LLMStreamer starts streaming completions. Ready reports whether a
// credential is available without calling the provider.
type LLMStreamer interface {
	Ready(ctx context.Context) error
	Stream(ctx context.Context, messages []domain.ChatMessage) (stream.Source, error)
}

// MarketData is the subset of the backend client used by chat routes.
type MarketData interface {
	Token(ctx context.Context, mint string) backend.Result[domain.TokenReport]
	ATH(ctx context.Context, mint string) backend.Result[domain.AthReport]
	Search(ctx context.Context, query string) backend.Result[domain.SearchResponse]
	Wallet(ctx context.Context, address string) backend.Result[domain.WalletReport]
}

type ChatInput struct {
	Messages []domain.ChatMessage
}

// ChatOutput carries the routed intent and the source to relay. The caller
// owns Source and must close it.
type ChatOutput struct {
	Intent intent.Kind
	Source stream.Source
}

type route struct {
	kind   intent.Kind
	handle func(ctx context.Context, value string, conversation []domain.ChatMessage) (stream.Source, error)
}

type ChatService struct {
	llm     LLMStreamer
	data    MarketData
	persona Persona
	metrics *metrics.Metrics
	routes  []route
}

type ChatOption func(*ChatService)

func WithChatMetrics(m *metrics.Metrics) ChatOption {
	return func(s *ChatService) {
		s.metrics = m
	}
}

func NewChatService(llm LLMStreamer, data MarketData, persona Persona, opts ...ChatOption) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if data == nil {
		return nil, errors.New("usecase: market data must not be nil")
	}
	if strings.TrimSpace(persona.Name) == "" {
		return nil, errors.New("usecase: persona name must not be empty")
	}
	s := &ChatService{llm: llm, data: data, persona: persona}
	for _, opt := range opts {
		opt(s)
	}
	// Evaluated in order; the first route whose kind matches wins.
	s.routes = []route{
		{intent.Help, s.help},
		{intent.Wallet, s.wallet},
		{intent.Search, s.search},
		{intent.Address, s.address},
		{intent.General, s.general},
	}
	return s, nil
}

// Chat routes the latest user message and starts the matching response
// stream.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if err := s.llm.Ready(ctx); err != nil {
		return ChatOutput{}, newError(ErrorConfiguration, "openai_key_missing", err)
	}
	if len(in.Messages) == 0 {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_messages", nil)
	}
	for _, m := range in.Messages {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return ChatOutput{}, newError(ErrorInvalidInput, "unsupported_role", nil)
		}
	}

	classified := classifyLast(in.Messages)
	s.metrics.ObserveChat(classified.Kind.String())
	logger.FromContext(ctx).Info("chat routed",
		"intent", classified.Kind.String(),
		"messages", len(in.Messages),
	)

	for _, r := range s.routes {
		if r.kind != classified.Kind {
			continue
		}
		src, err := r.handle(ctx, classified.Value, in.Messages)
		if err != nil {
			return ChatOutput{}, err
		}
		return ChatOutput{Intent: classified.Kind, Source: src}, nil
	}
	return ChatOutput{}, newError(ErrorInternal, "unrouted_intent", nil)
}

// classifyLast classifies the final message when the user authored it.
func classifyLast(messages []domain.ChatMessage) intent.Intent {
	last := messages[len(messages)-1]
	if last.Role != domain.RoleUser {
		return intent.Intent{Kind: intent.General}
	}
	return intent.Classify(last.Content)
}

func (s *ChatService) help(context.Context, string, []domain.ChatMessage) (stream.Source, error) {
	return stream.Text(helpText(s.persona)), nil
}

func (s *ChatService) wallet(ctx context.Context, address string, conversation []domain.ChatMessage) (stream.Source, error) {
	data := domain.EmptyWalletReport()
	if w := s.data.Wallet(ctx, address).Report(); w != nil {
		data = *w
	}
	system := basePrompt(s.persona) + walletAnalysisPrompt(address, report.Wallet(data))
	return s.complete(ctx, system, conversation)
}

func (s *ChatService) search(ctx context.Context, query string, conversation []domain.ChatMessage) (stream.Source, error) {
	results := s.data.Search(ctx, query).Report()
	system := basePrompt(s.persona) + searchPrompt(query, report.Search(results))
	return s.complete(ctx, system, conversation)
}

func (s *ChatService) address(ctx context.Context, mint string, conversation []domain.ChatMessage) (stream.Source, error) {
	var (
		token backend.Result[domain.TokenReport]
		ath   backend.Result[domain.AthReport]
		g     errgroup.Group
	)
	g.Go(func() error {
		token = s.data.Token(ctx, mint)
		return nil
	})
	g.Go(func() error {
		ath = s.data.ATH(ctx, mint)
		return nil
	})
	_ = g.Wait()

	system := basePrompt(s.persona)
	if t := token.Report(); t != nil {
		system += tokenAnalysisPrompt(mint, report.Token(t, ath.Report()))
	}
	return s.complete(ctx, system, conversation)
}

func (s *ChatService) general(ctx context.Context, _ string, conversation []domain.ChatMessage) (stream.Source, error) {
	return s.complete(ctx, basePrompt(s.persona), conversation)
}

func (s *ChatService) complete(ctx context.Context, system string, conversation []domain.ChatMessage) (stream.Source, error) {
	src, err := s.llm.Stream(ctx, buildPromptMessages(system, conversation))
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			return nil, newError(ErrorRateLimited, "openai_rate_limited", err)
		}
		return nil, newError(ErrorUpstream, "openai_error", err)
	}
	return src, nil
}
