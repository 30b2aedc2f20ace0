package llm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/llm"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/llm/llmtest"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/prompt"
)

var testPrompt = prompt.Prompt{System: "sys", User: "hello"}

// blockingModel 阻塞直到 ctx 结束
type blockingModel struct{}

func (blockingModel) Generate(ctx context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func TestSend_EmptyKeyFailsFast(t *testing.T) {
	fake := llmtest.New(func(_, _ string) (string, error) { return "ok", nil })
	c := llm.NewClient(llm.WithFactory(fake.Factory()))

	_, err := c.Send(context.Background(), dm.ModelConfig{Model: "gpt-4o"}, testPrompt)
	require.Error(t, err)
	assert.True(t, llm.IsConfigurationError(err))

	_, err = c.HealthCheck(context.Background(), dm.ModelConfig{APIKey: "  "})
	require.Error(t, err)
	assert.True(t, llm.IsConfigurationError(err))

	assert.Zero(t, fake.FactoryCalls())
	assert.Empty(t, fake.Prompts())
}

func TestSend_EmptyKeyMakesNoNetworkCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := llm.NewClient()
	_, err := c.Send(context.Background(), dm.ModelConfig{BaseURL: srv.URL, Model: "gpt-4o"}, testPrompt)
	assert.True(t, llm.IsConfigurationError(err))
	_, err = c.HealthCheck(context.Background(), dm.ModelConfig{BaseURL: srv.URL, Model: "gpt-4o"})
	assert.True(t, llm.IsConfigurationError(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestSend_ReturnsRawTextAndUsage(t *testing.T) {
	fake := llmtest.New(func(system, user string) (string, error) {
		assert.Equal(t, "sys", system)
		assert.Equal(t, "hello", user)
		return "  {\"summary\": \"x\"}\n", nil
	})
	fake.Usage = &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	c := llm.NewClient(llm.WithFactory(fake.Factory()))

	cfg := dm.ModelConfig{APIKey: "sk-test", Model: "gpt-4o"}
	resp, err := c.Send(context.Background(), cfg, testPrompt)
	require.NoError(t, err)

	assert.Equal(t, "  {\"summary\": \"x\"}\n", resp.Text, "reply must be passed through untouched")
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, dm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, resp.Usage)
	assert.Equal(t, []dm.ModelConfig{cfg}, fake.Configs())
}

func TestSend_ProviderErrorIsTransportError(t *testing.T) {
	boom := errors.New("status 429: too many requests")
	fake := llmtest.New(func(_, _ string) (string, error) { return "", boom })
	c := llm.NewClient(llm.WithFactory(fake.Factory()))

	_, err := c.Send(context.Background(), dm.ModelConfig{APIKey: "k"}, testPrompt)
	require.Error(t, err)
	assert.True(t, llm.IsTransportError(err))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, fake.Prompts(), 1, "no retry")
}

func TestSend_EmptyReplyIsTransportError(t *testing.T) {
	fake := llmtest.New(func(_, _ string) (string, error) { return "   ", nil })
	c := llm.NewClient(llm.WithFactory(fake.Factory()))

	_, err := c.Send(context.Background(), dm.ModelConfig{APIKey: "k"}, testPrompt)
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	assert.True(t, llm.IsTransportError(err))
}

func TestSend_Timeout(t *testing.T) {
	c := llm.NewClient(
		llm.WithTimeout(20*time.Millisecond),
		llm.WithFactory(func(context.Context, dm.ModelConfig) (model.BaseChatModel, error) {
			return blockingModel{}, nil
		}),
	)

	_, err := c.Send(context.Background(), dm.ModelConfig{APIKey: "k"}, testPrompt)
	require.Error(t, err)
	assert.True(t, llm.IsTransportError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealthCheck(t *testing.T) {
	fake := llmtest.New(func(_, user string) (string, error) {
		assert.Contains(t, user, "READY")
		return "READY\n", nil
	})
	c := llm.NewClient(llm.WithFactory(fake.Factory()))

	status, err := c.HealthCheck(context.Background(), dm.ModelConfig{APIKey: "k", Model: "gpt-5-nano"})
	require.NoError(t, err)
	assert.Equal(t, "READY", status.Reply)
	assert.Equal(t, "gpt-5-nano", status.Model)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, llm.NewLimiter(5, 0))
	l := llm.NewLimiter(0, 120)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
	assert.InDelta(t, 2.0, float64(l.Limit()), 1e-9)
}

func TestOpenAIChatModel_AgainstCompatibleServer(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "READY"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 1, "total_tokens": 13}
		}`))
	}))
	defer srv.Close()

	c := llm.NewClient()
	status, err := c.HealthCheck(context.Background(), dm.ModelConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "READY", status.Reply)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestOpenAIChatModel_Non2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream down", "type": "server_error"}}`))
	}))
	defer srv.Close()

	c := llm.NewClient()
	_, err := c.Send(context.Background(), dm.ModelConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o-mini"}, testPrompt)
	require.Error(t, err)
	assert.True(t, llm.IsTransportError(err))
}
