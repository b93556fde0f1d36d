package employee_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmarieta/chatarra/internal/employee"
)

func TestService_RefreshStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := employee.NewMockRepository(ctrl)

	repo.EXPECT().CountHandledSessions(gomock.Any(), "maria").Return(int64(42), nil)
	repo.EXPECT().SumOutstandingAdvances(gomock.Any(), "maria").Return(int64(15000), nil)
	repo.EXPECT().SaveStats(gomock.Any(), "maria", int64(42), int64(15000)).Return(nil)

	svc := employee.NewService(repo)

	require.NoError(t, svc.RefreshStats(context.Background(), "maria"))
}

func TestService_RefreshStatsSurfacesCountError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := employee.NewMockRepository(ctrl)

	repo.EXPECT().CountHandledSessions(gomock.Any(), "maria").Return(int64(0), errors.New("db down"))

	svc := employee.NewService(repo)

	assert.Error(t, svc.RefreshStats(context.Background(), "maria"))
}

func TestService_SettleAdvance(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := employee.NewMockRepository(ctrl)

	gomock.InOrder(
		repo.EXPECT().MarkAdvanceSettled(gomock.Any(), int64(7)).Return("pedro", nil),
		repo.EXPECT().CountHandledSessions(gomock.Any(), "pedro").Return(int64(3), nil),
		repo.EXPECT().SumOutstandingAdvances(gomock.Any(), "pedro").Return(int64(0), nil),
		repo.EXPECT().SaveStats(gomock.Any(), "pedro", int64(3), int64(0)).Return(nil),
	)

	svc := employee.NewService(repo)

	require.NoError(t, svc.SettleAdvance(context.Background(), 7))
}

func TestService_SettleAdvanceUnknownID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := employee.NewMockRepository(ctrl)

	repo.EXPECT().MarkAdvanceSettled(gomock.Any(), int64(99)).Return("", errors.New("no such advance"))

	svc := employee.NewService(repo)

	assert.Error(t, svc.SettleAdvance(context.Background(), 99))
}
