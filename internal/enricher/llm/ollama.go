package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JexSrs/go-ollama"
)

// DefaultOllamaEndpoint is the address of a local Ollama daemon.
const DefaultOllamaEndpoint = "http://localhost:11434"

// OllamaClient completes prompts with a local Ollama model.
type OllamaClient struct {
	client *ollama.Ollama
	model  string
	logger *slog.Logger
}

// NewOllamaClient creates a client for the Ollama daemon at cfg.Endpoint.
// cfg.APIKey is ignored.
func NewOllamaClient(cfg Config, logger *slog.Logger) (*OllamaClient, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse ollama endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse ollama endpoint: %q is not an absolute URL", endpoint)
	}
	if cfg.Model == "" {
		return nil, errors.New("ollama model is required")
	}
	return &OllamaClient{
		client: ollama.New(*u),
		model:  cfg.Model,
		logger: logger.With("component", "ollama-client"),
	}, nil
}

type ollamaReply struct {
	text string
	err  error
}

// Complete runs a single non-streaming generation. The underlying library
// takes no context, so cancellation abandons the call rather than aborting it.
func (c *OllamaClient) Complete(ctx context.Context, p Prompt) (string, error) {
	done := make(chan ollamaReply, 1)
	go func() {
		res, err := c.client.Generate(
			c.client.Generate.WithModel(c.model),
			c.client.Generate.WithSystem(p.System),
			c.client.Generate.WithPrompt(p.User),
		)
		if err != nil {
			done <- ollamaReply{err: fmt.Errorf("ollama generate: %w", err)}
			return
		}
		if !res.Done {
			done <- ollamaReply{err: errors.New("ollama generate: response not finished")}
			return
		}
		if strings.TrimSpace(res.Response) == "" {
			done <- ollamaReply{err: errors.New("ollama generate: empty response")}
			return
		}
		done <- ollamaReply{text: res.Response}
	}()

	c.logger.Debug("sending ollama request", "model", c.model)

	select {
	case r := <-done:
		if r.err == nil {
			c.logger.Debug("received ollama response", "length", len(r.text))
		}
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
