// internal/dataset/persist_test.go
package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github-test-metrics/internal/database"
	"github-test-metrics/internal/model"
)

// MockQuerier is a mock of the database.Querier interface.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) UpsertProjectSummary(ctx context.Context, arg database.UpsertProjectSummaryParams) (database.ProjectSummary, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.ProjectSummary), args.Error(1)
}
func (m *MockQuerier) ListProjectSummaries(ctx context.Context) ([]database.ProjectSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]database.ProjectSummary), args.Error(1)
}
func (m *MockQuerier) GetProjectSummary(ctx context.Context, arg database.GetProjectSummaryParams) (database.ProjectSummary, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.ProjectSummary), args.Error(1)
}

func TestUpsertDataset(t *testing.T) {
	ctx := context.Background()
	ds := model.Dataset{
		{Project: model.ProjectID{Owner: "dapr", Name: "dapr"}, UnitRatio: model.Some(0.3), BugCount: 4},
		{Project: model.ProjectID{Owner: "keptn", Name: "keptn"}, Position: 2},
	}

	t.Run("upserts every row with its configured position", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("UpsertProjectSummary", ctx, mock.MatchedBy(func(p database.UpsertProjectSummaryParams) bool {
			return p.Name == "dapr" && p.Position == 0
		})).Return(database.ProjectSummary{ID: 1}, nil).Once()
		mockQ.On("UpsertProjectSummary", ctx, mock.MatchedBy(func(p database.UpsertProjectSummaryParams) bool {
			return p.Name == "keptn" && p.Position == 2
		})).Return(database.ProjectSummary{ID: 2}, nil).Once()

		err := upsertDataset(ctx, mockQ, ds)

		assert.NoError(t, err)
		mockQ.AssertExpectations(t)
	})

	t.Run("stops at the first failing row", func(t *testing.T) {
		mockQ := new(MockQuerier)
		dbError := errors.New("connection reset")
		mockQ.On("UpsertProjectSummary", ctx, mock.Anything).Return(database.ProjectSummary{}, dbError).Once()

		err := upsertDataset(ctx, mockQ, ds)

		assert.Equal(t, dbError, err)
		mockQ.AssertNumberOfCalls(t, "UpsertProjectSummary", 1)
	})
}
