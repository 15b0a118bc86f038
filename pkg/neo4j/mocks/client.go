package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/trustlens/transfergraph/pkg/neo4j"
)

// MockClient is a mock implementation of neo4j.Client for testing
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Session(ctx context.Context) neo4j.Session {
	args := m.Called(ctx)
	return args.Get(0).(neo4j.Session)
}

func (m *MockClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClient) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSession is a mock implementation of neo4j.Session. ExecuteWrite invokes
// the supplied work function against the transaction configured via WithTx,
// mirroring how the real driver drives managed transaction work.
type MockSession struct {
	mock.Mock

	tx neo4j.Transaction
}

// WithTx sets the transaction handed to ExecuteWrite work functions.
func (m *MockSession) WithTx(tx neo4j.Transaction) *MockSession {
	m.tx = tx
	return m
}

func (m *MockSession) ExecuteWrite(ctx context.Context, work neo4j.TransactionWork) (any, error) {
	args := m.Called(ctx, work)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	if m.tx != nil {
		return work(m.tx)
	}
	return args.Get(0), nil
}

func (m *MockSession) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTransaction is a mock implementation of neo4j.Transaction
type MockTransaction struct {
	mock.Mock
}

func (m *MockTransaction) Run(ctx context.Context, cypher string, params map[string]any) (neo4j.Result, error) {
	args := m.Called(ctx, cypher, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(neo4j.Result), args.Error(1)
}

// StaticResult is a canned neo4j.Result yielding a fixed number of records.
type StaticResult struct {
	Records int
	Error   error

	pos int
}

func (r *StaticResult) Next(ctx context.Context) bool {
	if r.Error != nil || r.pos >= r.Records {
		return false
	}
	r.pos++
	return true
}

func (r *StaticResult) Err() error {
	return r.Error
}
