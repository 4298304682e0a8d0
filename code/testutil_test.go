package code

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/botexec/capability"
)

// mockSurface implements Surface for testing.
type mockSurface struct {
	mu sync.Mutex

	// Configurable returns
	results map[capability.Op]capability.Result
	err     error

	// Call tracking
	actions []string
	invoked []capability.Op
	settled int
}

func (m *mockSurface) Invoke(_ context.Context, op capability.Op) (capability.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoked = append(m.invoked, op)
	if m.err != nil {
		return capability.Result{}, m.err
	}
	if op.Valid() && op.Kind() == capability.Mutator {
		m.actions = append(m.actions, op.String())
	}
	return m.results[op], nil
}

func (m *mockSurface) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.actions...)
}

func (m *mockSurface) Settle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled++
}

// mockEngine implements Engine for testing.
type mockEngine struct {
	mu sync.Mutex

	// Configurable returns
	vetErr        error
	executeResult ExecuteResult
	executeErr    error
	ops           []capability.Op
	panicValue    any
	onExecute     func()

	// Call tracking
	vetCalls     []ExecuteParams
	executeCalls []executeCall
}

type executeCall struct {
	ctx    context.Context
	params ExecuteParams
	tools  Tools
}

func (m *mockEngine) Vet(_ context.Context, params ExecuteParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vetCalls = append(m.vetCalls, params)
	return m.vetErr
}

func (m *mockEngine) Execute(ctx context.Context, params ExecuteParams, tools Tools) (ExecuteResult, error) {
	m.mu.Lock()
	m.executeCalls = append(m.executeCalls, executeCall{ctx, params, tools})
	m.mu.Unlock()

	for _, op := range m.ops {
		if _, err := tools.Invoke(ctx, op); err != nil {
			return ExecuteResult{}, &CodeError{Kind: KindRuntime, Message: err.Error(), Err: err}
		}
	}
	if m.onExecute != nil {
		m.onExecute()
	}
	if m.panicValue != nil {
		panic(m.panicValue)
	}
	return m.executeResult, m.executeErr
}

// mockLogger implements Logger for testing.
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s %s", level, msg))
}

func (l *mockLogger) Info(msg string, _ ...any)  { l.record("INFO", msg) }
func (l *mockLogger) Warn(msg string, _ ...any)  { l.record("WARN", msg) }
func (l *mockLogger) Error(msg string, _ ...any) { l.record("ERROR", msg) }

func (l *mockLogger) has(entry string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == entry {
			return true
		}
	}
	return false
}
