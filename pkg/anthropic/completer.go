package anthropic

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// CompleterConfig configures a Completer.
type CompleterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration // per call; zero means no deadline
}

// Completer turns a system and user prompt into a single text reply. The
// underlying client is built on first use, so a missing key or model only
// surfaces as a per-call error.
type Completer struct {
	cfg       CompleterConfig
	newClient func(apiKey string, opts ClientOptions) Client

	once   sync.Once
	client Client
	err    error
}

// NewCompleter returns a Completer for cfg.
func NewCompleter(cfg CompleterConfig) *Completer {
	return &Completer{cfg: cfg, newClient: NewClient}
}

// NewCompleterWithClient returns a Completer that sends through c.
func NewCompleterWithClient(cfg CompleterConfig, c Client) *Completer {
	return &Completer{
		cfg:       cfg,
		newClient: func(string, ClientOptions) Client { return c },
	}
}

func (c *Completer) init() (Client, error) {
	c.once.Do(func() {
		switch {
		case c.cfg.APIKey == "":
			c.err = eris.New("anthropic: api key is not configured")
		case c.cfg.Model == "":
			c.err = eris.New("anthropic: model is not configured")
		default:
			c.client = c.newClient(c.cfg.APIKey, ClientOptions{
				BaseURL: c.cfg.BaseURL,
				Timeout: c.cfg.Timeout,
			})
		}
	})
	return c.client, c.err
}

// Complete sends one user turn with a cached system prompt and returns the
// reply text.
func (c *Completer) Complete(ctx context.Context, system, user string, maxTokens int64, temperature float64) (string, error) {
	client, err := c.init()
	if err != nil {
		return "", err
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := MessageRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxTokens,
		Messages:    []Message{{Role: "user", Content: user}},
		Temperature: &temperature,
	}
	if system != "" {
		req.System = BuildCachedSystemBlocks(system)
	}

	resp, err := client.CreateMessage(ctx, req)
	if err != nil {
		return "", err
	}
	resp.Usage.LogUsage(c.cfg.Model)

	text := resp.Text()
	if text == "" {
		return "", eris.Errorf("anthropic: empty reply (stop reason %q)", resp.StopReason)
	}
	return text, nil
}
