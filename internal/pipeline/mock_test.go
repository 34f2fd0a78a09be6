package pipeline

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// --- Completer Mock ---

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string, maxTokens int64, temperature float64) (string, error) {
	args := m.Called(ctx, system, user, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

// --- Lookup Mock ---

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, questionID string, category model.AdviceCategory) (string, bool, error) {
	args := m.Called(ctx, questionID, category)
	return args.String(0), args.Bool(1), args.Error(2)
}

// mapLookup is a fixed in-memory lookup keyed by "question_id/category".
type mapLookup map[string]string

func (m mapLookup) Lookup(_ context.Context, questionID string, category model.AdviceCategory) (string, bool, error) {
	text, ok := m[questionID+"/"+string(category)]
	return text, ok, nil
}

// echoCompleter answers deterministically from the user prompt and records
// the peak number of concurrent calls.
type echoCompleter struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int
	release  chan struct{}
	err      error
}

func (e *echoCompleter) Complete(ctx context.Context, _, user string, _ int64, _ float64) (string, error) {
	e.mu.Lock()
	e.calls++
	e.inFlight++
	if e.inFlight > e.peak {
		e.peak = e.inFlight
	}
	e.mu.Unlock()

	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
		}
	}

	e.mu.Lock()
	e.inFlight--
	e.mu.Unlock()

	if e.err != nil {
		return "", e.err
	}
	return "advice(" + firstLine(user) + ")", nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
