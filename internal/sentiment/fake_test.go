package sentiment

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/sentimeter/internal/llm"
)

var (
	openAIKey    = "sk-proj-" + strings.Repeat("a", 40)
	anthropicKey = "sk-ant-api03-" + strings.Repeat("b", 40)
)

// fakeTransport records calls and replays canned answers.
type fakeTransport struct {
	provider llm.Provider

	mu         sync.Mutex
	probeErr   error
	reply      *llm.Response
	replyErr   error
	probes     int
	completes  int
	lastKey    string
	lastReq    *llm.Request
	completeFn func(ctx context.Context) error
}

func (f *fakeTransport) Provider() llm.Provider { return f.provider }

func (f *fakeTransport) Complete(ctx context.Context, apiKey string, req *llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.completes++
	f.lastKey = apiKey
	f.lastReq = req
	fn := f.completeFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx); err != nil {
			return nil, err
		}
	}
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	return f.reply, nil
}

func (f *fakeTransport) Probe(_ context.Context, apiKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	f.lastKey = apiKey
	return f.probeErr
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes + f.completes
}

func newFakes() (*fakeTransport, *fakeTransport, llm.Registry) {
	oa := &fakeTransport{provider: llm.ProviderOpenAI}
	an := &fakeTransport{provider: llm.ProviderAnthropic}
	return oa, an, llm.NewRegistry(oa, an)
}

func validCredential(t *testing.T, reg llm.Registry, key string) *Credential {
	t.Helper()
	cred, err := NewValidator(reg, time.Second, nil).Validate(context.Background(), key)
	require.NoError(t, err)
	return cred
}

func reply(content string) *llm.Response {
	return &llm.Response{Content: content, InputTokens: 120, OutputTokens: 40, FinishReason: "stop"}
}
