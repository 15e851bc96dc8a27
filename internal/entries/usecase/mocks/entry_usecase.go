// Package mocks provides mock implementations of the entry use cases for handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	entriesUseCase "github.com/Coops0/jrnlapp/internal/entries/usecase"
)

// MockEntryUseCase is a mock implementation of EntryUseCase.
type MockEntryUseCase struct {
	mock.Mock
}

// ListHistory mocks the ListHistory method of EntryUseCase.
func (m *MockEntryUseCase) ListHistory(
	ctx context.Context,
	author entriesDomain.Author,
	cursor *entriesDomain.Cursor,
	limit int,
) (*entriesDomain.EntryPage, error) {
	args := m.Called(ctx, author, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.EntryPage), args.Error(1)
}

// Get mocks the Get method of EntryUseCase.
func (m *MockEntryUseCase) Get(
	ctx context.Context,
	author entriesDomain.Author,
	id uuid.UUID,
) (*entriesDomain.DecryptedEntry, error) {
	args := m.Called(ctx, author, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.DecryptedEntry), args.Error(1)
}

// GetToday mocks the GetToday method of EntryUseCase.
func (m *MockEntryUseCase) GetToday(
	ctx context.Context,
	author entriesDomain.Author,
) (*entriesDomain.ActiveEntry, error) {
	args := m.Called(ctx, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.ActiveEntry), args.Error(1)
}

// UpsertToday mocks the UpsertToday method of EntryUseCase.
func (m *MockEntryUseCase) UpsertToday(
	ctx context.Context,
	author entriesDomain.Author,
	input entriesUseCase.UpsertInput,
) (*entriesDomain.ActiveEntry, error) {
	args := m.Called(ctx, author, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.ActiveEntry), args.Error(1)
}

// ImportLocal mocks the ImportLocal method of EntryUseCase.
func (m *MockEntryUseCase) ImportLocal(
	ctx context.Context,
	author entriesDomain.Author,
	locals []*entriesDomain.LocalEntry,
) (int, error) {
	args := m.Called(ctx, author, locals)
	return args.Int(0), args.Error(1)
}

// Average mocks the Average method of EntryUseCase.
func (m *MockEntryUseCase) Average(ctx context.Context, author entriesDomain.Author) (*float64, error) {
	args := m.Called(ctx, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}
