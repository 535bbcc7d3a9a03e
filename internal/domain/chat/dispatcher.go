package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexabot/lexa/internal/infra/llm"
)

// systemPersona is the fixed instruction every provider call starts with.
const systemPersona = "You are a legal assistant bot that provides information about legal matters. " +
	"Focus on providing accurate, helpful legal information while making it clear you are not providing legal advice. " +
	"Include relevant legal concepts, principles, and considerations in your responses. Be informative but cautious."

// degradedMessage instructs the caller when no provider can serve the call.
const degradedMessage = "No API keys are configured. Please configure your API keys in the Settings page or via environment variables:\n\n" +
	"Available providers: OpenAI, Gemini, Mistral\n\n" +
	"Go to Settings → API Key Settings to configure your keys."

// Dispatch outcome labels for logging and metrics.
const (
	outcomeSucceeded = "succeeded"
	outcomeDegraded  = "degraded"
	outcomeFailed    = "failed"
)

// ProviderSelector picks a provider for a message when none is pinned.
type ProviderSelector interface {
	Select(message string, perRequestKeys map[string]string, historyTurns int) string
}

// ProviderGateway performs the uniform provider call.
type ProviderGateway interface {
	Invoke(ctx context.Context, provider string, msgs []llm.Message, apiKey string) (string, error)
}

// ProviderRegistry answers availability questions during resolution.
type ProviderRegistry interface {
	IsAvailable(name string, perRequestKeys map[string]string) bool
}

// Publisher decouples dispatch from durable archiving and other consumers.
type Publisher interface {
	Publish(topic string, payload any)
}

// DispatchObserver receives one observation per completed dispatch.
type DispatchObserver interface {
	ObserveDispatch(provider, outcome string, elapsed time.Duration)
}

// TopicMessage carries MessageEvent payloads on the event bus.
const TopicMessage = "chat.message"

// MessageEvent is published for every turn accepted into the store.
type MessageEvent struct {
	UserID   string
	Role     string
	Content  string
	Provider string
	At       time.Time
}

// Dispatcher orchestrates one message end to end: history capture, provider
// resolution, the gateway call, disclaimer normalization and result shaping.
type Dispatcher struct {
	store    *ConversationStore
	registry ProviderRegistry
	selector ProviderSelector
	gateway  ProviderGateway
	bus      Publisher
	observer DispatchObserver
	log      *zap.Logger
}

// NewDispatcher wires the dispatch core. bus and observer may be nil.
func NewDispatcher(
	store *ConversationStore,
	registry ProviderRegistry,
	selector ProviderSelector,
	gateway ProviderGateway,
	bus Publisher,
	observer DispatchObserver,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:    store,
		registry: registry,
		selector: selector,
		gateway:  gateway,
		bus:      bus,
		observer: observer,
		log:      log,
	}
}

// Dispatch handles one inbound message. The only error return is malformed
// input (empty content), rejected before any state change; every provider
// outcome — success, degraded, failed — comes back as a DispatchResult.
// Dispatch is deliberately not idempotent: each call appends new history.
func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) (*DispatchResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyMessage
	}

	start := time.Now()

	// History capture never depends on dispatch success.
	d.record(in.UserID, Turn{Role: RoleUser, Content: in.Content, Timestamp: time.Now().UTC()})

	provider := d.resolveProvider(in)
	if provider == "" {
		d.observe(ProviderNone, outcomeDegraded, start)
		d.log.Info("dispatch degraded: no provider available", zap.String("user_id", in.UserID))
		return &DispatchResult{
			Message:    degradedMessage,
			Provider:   ProviderNone,
			Confidence: 0.0,
			Sources:    []string{},
			Error:      ErrKindNoProvider,
		}, nil
	}

	msgs := d.buildMessages(in.UserID)
	text, err := d.gateway.Invoke(ctx, provider, msgs, in.APIKeys[provider])
	if err != nil {
		d.observe(provider, outcomeFailed, start)
		d.log.Warn("dispatch failed",
			zap.String("user_id", in.UserID),
			zap.String("provider", provider),
			zap.Error(err))
		return &DispatchResult{
			Message:    failureMessage(provider, err),
			Provider:   provider,
			Confidence: 0.0,
			Sources:    []string{},
			Error:      ErrKindCallFailed,
		}, nil
	}

	text = ensureDisclaimer(text)
	d.record(in.UserID, Turn{Role: RoleAssistant, Content: text, Provider: provider, Timestamp: time.Now().UTC()})

	d.observe(provider, outcomeSucceeded, start)
	d.log.Info("dispatch succeeded",
		zap.String("user_id", in.UserID),
		zap.String("provider", provider),
		zap.Duration("elapsed", time.Since(start)))

	return &DispatchResult{
		Message:    text,
		Provider:   provider,
		Confidence: providerConfidence[provider],
		Sources:    []string{},
	}, nil
}

// resolveProvider applies the requested-vs-auto policy: an available pinned
// provider wins; anything else goes through the selector.
func (d *Dispatcher) resolveProvider(in DispatchInput) string {
	requested := strings.TrimSpace(in.Provider)
	if requested != "" && requested != "auto" {
		if d.registry.IsAvailable(requested, in.APIKeys) {
			return requested
		}
		d.log.Info("requested provider unavailable, falling back to selector",
			zap.String("requested", requested))
	}
	return d.selector.Select(in.Content, in.APIKeys, d.store.Len(in.UserID))
}

// buildMessages assembles the persona plus the trailing context window,
// which already contains the just-appended user turn.
func (d *Dispatcher) buildMessages(userID string) []llm.Message {
	window := d.store.ContextWindow(userID, ContextWindowSize)
	msgs := make([]llm.Message, 0, len(window)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPersona})
	for _, t := range window {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}

// record appends to the in-memory store and fans the turn out on the bus.
func (d *Dispatcher) record(userID string, turn Turn) {
	d.store.Append(userID, turn)
	if d.bus != nil {
		d.bus.Publish(TopicMessage, MessageEvent{
			UserID:   userID,
			Role:     turn.Role,
			Content:  turn.Content,
			Provider: turn.Provider,
			At:       turn.Timestamp,
		})
	}
}

func (d *Dispatcher) observe(provider, outcome string, start time.Time) {
	if d.observer != nil {
		d.observer.ObserveDispatch(provider, outcome, time.Since(start))
	}
}

// ensureDisclaimer appends the standard disclaimer unless the provider text
// already contains one (case-insensitive).
func ensureDisclaimer(text string) string {
	if strings.Contains(strings.ToLower(text), "disclaimer") {
		return text
	}
	return text + "\n\n" + Disclaimer
}

// failureMessage is the client-visible diagnostic for a failed provider call.
func failureMessage(provider string, err error) string {
	return fmt.Sprintf("Failed to get response from %s API. Please check:\n\n"+
		"1. Your %s API key is correctly configured\n"+
		"2. The API key is valid and has sufficient credits\n"+
		"3. The provider endpoint is reachable\n\n"+
		"Error details: %v", provider, provider, err)
}
