package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmarieta/chatarra/internal/ledger"
)

func TestService_Append(t *testing.T) {
	type testCase struct {
		name    string
		params  ledger.AppendParams
		inserts bool
		wantErr error
	}

	tests := []testCase{
		{
			name:    "OpeningBalance",
			params:  ledger.AppendParams{Kind: ledger.KindOpening, Amount: 500000, Employee: "maria"},
			inserts: true,
		},
		{
			name:    "GeneralExpenseNegative",
			params:  ledger.AppendParams{Kind: ledger.KindGeneralExpense, Amount: -12000, Description: "fuel"},
			inserts: true,
		},
		{
			name:    "GeneralExpenseZeroAllowed",
			params:  ledger.AppendParams{Kind: ledger.KindGeneralExpense, Amount: 0},
			inserts: true,
		},
		{
			name:    "GeneralExpensePositiveRejected",
			params:  ledger.AppendParams{Kind: ledger.KindGeneralExpense, Amount: 12000},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "AdjustmentEitherSign",
			params:  ledger.AppendParams{Kind: ledger.KindAdjustment, Amount: -300},
			inserts: true,
		},
		{
			name:    "TransactionEffectNotAppendable",
			params:  ledger.AppendParams{Kind: ledger.KindTransactionEffect, Amount: -31000},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "UnknownKind",
			params:  ledger.AppendParams{Kind: ledger.Kind("bonus"), Amount: 100},
			wantErr: ledger.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := ledger.NewMockRepository(ctrl)

			if tt.inserts {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
						assert.NotEqual(t, uuid.Nil, e.ID)
						assert.Equal(t, tt.params.Kind, e.Kind)
						assert.Equal(t, tt.params.Amount, e.Amount)
						assert.Nil(t, e.TransactionID)
						assert.False(t, e.Timestamp.IsZero(), "a zero timestamp must be defaulted")
						return nil
					})
			}

			svc := ledger.NewService(repo)

			entry, err := svc.Append(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, entry)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, entry)
		})
	}
}

func TestService_AppendKeepsExplicitTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
			assert.Equal(t, ts, e.Timestamp)
			return nil
		})

	svc := ledger.NewService(repo)

	_, err := svc.Append(context.Background(), ledger.AppendParams{
		Kind:      ledger.KindAdjustment,
		Amount:    750,
		Timestamp: ts,
	})
	require.NoError(t, err)
}

func TestService_PostTransactionEffect(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	repo.EXPECT().InsertEffect(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) (bool, error) {
			assert.Equal(t, ledger.KindTransactionEffect, e.Kind)
			assert.Equal(t, int64(-31000), e.Amount)
			assert.Equal(t, "transaction TXN-00000007", e.Description)
			assert.Equal(t, "maria", e.Employee)
			require.NotNil(t, e.TransactionID)
			assert.Equal(t, "TXN-00000007", *e.TransactionID)
			assert.Equal(t, ts, e.Timestamp)
			return true, nil
		})

	svc := ledger.NewService(repo)

	posted, err := svc.PostTransactionEffect(context.Background(), "TXN-00000007", -31000, "maria", ts)
	require.NoError(t, err)
	assert.True(t, posted)
}

func TestService_PostTransactionEffectAlreadyPosted(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	repo.EXPECT().InsertEffect(gomock.Any(), gomock.Any()).Return(false, nil)

	svc := ledger.NewService(repo)

	posted, err := svc.PostTransactionEffect(context.Background(), "TXN-00000007", -31000, "maria", time.Now())
	require.NoError(t, err)
	assert.False(t, posted, "a second completion must not double the cash impact")
}

func TestService_PostTransactionEffectPropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	repo.EXPECT().InsertEffect(gomock.Any(), gomock.Any()).Return(false, errors.New("connection reset"))

	svc := ledger.NewService(repo)

	posted, err := svc.PostTransactionEffect(context.Background(), "TXN-00000007", -31000, "maria", time.Now())
	assert.Error(t, err)
	assert.False(t, posted)
}

func TestService_Balance(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := ledger.Range{From: &from}

	repo.EXPECT().SumAmounts(gomock.Any(), r).Return(int64(457000), nil)

	svc := ledger.NewService(repo)

	balance, err := svc.Balance(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, int64(457000), balance)
}

func TestService_Subtotals(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	want := ledger.Subtotals{
		Opening:            500000,
		TransactionIncome:  120000,
		TransactionExpense: -151000,
		GeneralExpense:     -12000,
		Adjustment:         0,
	}

	repo.EXPECT().SumByKind(gomock.Any(), ledger.Range{}).Return(want, nil)

	svc := ledger.NewService(repo)

	got, err := svc.Subtotals(context.Background(), ledger.Range{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_EffectExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	repo.EXPECT().ExistsEffect(gomock.Any(), "TXN-00000007").Return(true, nil)

	svc := ledger.NewService(repo)

	exists, err := svc.EffectExists(context.Background(), "TXN-00000007")
	require.NoError(t, err)
	assert.True(t, exists)
}
