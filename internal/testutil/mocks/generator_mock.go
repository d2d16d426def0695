package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/mcala/biaslab/internal/ai"
)

// MockGenerator is a mock implementation of ai.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	args := m.Called(ctx, system, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockGenerator) StreamChat(ctx context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	args := m.Called(ctx, messages)
	return args.Get(0).(<-chan string), args.Get(1).(<-chan error)
}

// StreamOf builds the channel pair StreamChat returns from a fixed token
// sequence, optionally ending in an error.
func StreamOf(tokens []string, err error) (<-chan string, <-chan error) {
	tokenCh := make(chan string, len(tokens))
	errCh := make(chan error, 1)
	for _, t := range tokens {
		tokenCh <- t
	}
	if err != nil {
		errCh <- err
	}
	close(tokenCh)
	close(errCh)
	return tokenCh, errCh
}
