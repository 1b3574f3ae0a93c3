// Package probe validates an API credential with one live Messages API call.
//
// Every call with a present credential makes a real, billable upstream
// request. There is no retry, backoff or deduplication.
package probe

import (
	"context"
	"log"
	"time"

	"keyprobe/internal/credential"
	"keyprobe/internal/provider"

	"github.com/google/uuid"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	MessageNoKey   = "No API key found in environment"
	MessageValid   = "API key is valid and working"
	MessageFailed  = "API key found but request failed"
	TestPrompt     = "Say 'API key works!' in 5 words or less"
	TestMaxTokens  = 10
	keyPrefixChars = 20
)

// Result is the outcome of one probe, serialized as the response body.
type Result struct {
	Status       string  `json:"status"`
	Message      string  `json:"message"`
	HasKey       bool    `json:"hasKey"`
	KeyPrefix    string  `json:"keyPrefix,omitempty"`
	TestResponse *string `json:"testResponse,omitempty"`
	Error        string  `json:"error,omitempty"`
	ErrorType    string  `json:"errorType,omitempty"`

	// UpstreamRequestID is logged and recorded but never returned to callers.
	UpstreamRequestID string `json:"-"`
}

// Attempt describes a finished probe for recording. It never carries the key.
type Attempt struct {
	ID           uuid.UUID
	KeyPrefix    string
	Model        string
	Status       string
	ErrorType    string
	ErrorMessage string
	RequestID    string // upstream request id, empty unless the service answered
	Latency      time.Duration
	CreatedAt    time.Time
}

// Recorder persists probe attempts.
type Recorder interface {
	Record(ctx context.Context, a *Attempt) error
}

// ClientFactory builds an upstream client bound to one API key.
type ClientFactory func(apiKey string) provider.MessageCreator

// AnthropicClients returns a ClientFactory for the Anthropic Messages API.
// An empty baseURL or zero timeout keeps the client defaults.
func AnthropicClients(baseURL string, timeout time.Duration) ClientFactory {
	var opts []provider.Option
	if baseURL != "" {
		opts = append(opts, provider.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, provider.WithTimeout(timeout))
	}
	return func(apiKey string) provider.MessageCreator {
		return provider.NewAnthropic(apiKey, opts...)
	}
}

// Prober runs credential probes.
type Prober struct {
	newClient ClientFactory
	model     string
	recorder  Recorder
	now       func() time.Time
}

// NewProber creates a Prober that sends model requests through clients made by newClient.
func NewProber(newClient ClientFactory, model string) *Prober {
	return &Prober{
		newClient: newClient,
		model:     model,
		now:       time.Now,
	}
}

// WithRecorder enables recording of probe attempts.
func (p *Prober) WithRecorder(r Recorder) *Prober {
	p.recorder = r
	return p
}

// Model returns the model identifier used for test calls.
func (p *Prober) Model() string {
	return p.model
}

// Run probes cred. It never returns an error: every failure is described in
// the Result. An absent credential short-circuits without a network call.
func (p *Prober) Run(ctx context.Context, cred credential.Credential) Result {
	if !cred.Present() {
		return Result{
			Status:  StatusError,
			Message: MessageNoKey,
			HasKey:  false,
		}
	}

	keyPrefix := cred.Masked(keyPrefixChars)
	start := p.now()

	client := p.newClient(string(cred))
	msg, err := client.CreateMessage(ctx, provider.MessageRequest{
		Model:     p.model,
		MaxTokens: TestMaxTokens,
		Messages:  []provider.MessageParam{provider.NewUserMessage(TestPrompt)},
	})

	var text string
	if err == nil {
		var ok bool
		if text, ok = msg.FirstText(); !ok {
			err = provider.ErrEmptyResponse
		}
	}

	var result Result
	if err != nil {
		result = Result{
			Status:    StatusError,
			Message:   MessageFailed,
			HasKey:    true,
			KeyPrefix: keyPrefix,
			Error:     provider.ErrorMessage(err),
			ErrorType: provider.ErrorKind(err),

			UpstreamRequestID: provider.RequestID(err),
		}
	} else {
		result = Result{
			Status:       StatusSuccess,
			Message:      MessageValid,
			HasKey:       true,
			KeyPrefix:    keyPrefix,
			TestResponse: &text,
		}
	}

	p.record(ctx, result, p.now().Sub(start))
	return result
}

func (p *Prober) record(ctx context.Context, result Result, latency time.Duration) {
	if p.recorder == nil {
		return
	}

	attempt := &Attempt{
		ID:           uuid.New(),
		KeyPrefix:    result.KeyPrefix,
		Model:        p.model,
		Status:       result.Status,
		ErrorType:    result.ErrorType,
		ErrorMessage: result.Error,
		RequestID:    result.UpstreamRequestID,
		Latency:      latency,
		CreatedAt:    p.now(),
	}

	if err := p.recorder.Record(context.WithoutCancel(ctx), attempt); err != nil {
		log.Printf("failed to record probe attempt id=%s: %v", attempt.ID, err)
	}
}
