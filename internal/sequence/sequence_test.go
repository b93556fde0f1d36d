package sequence_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/dmarieta/chatarra/internal/sequence"
)

func TestGenerator_Next(t *testing.T) {
	type testCase struct {
		name    string
		highest int64
		want    string
	}

	tests := []testCase{
		{name: "FirstIdentifier", highest: 0, want: "TXN-00000001"},
		{name: "Increments", highest: 122, want: "TXN-00000123"},
		{name: "PaddingHolds", highest: 9999999, want: "TXN-10000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := sequence.NewMockStore(ctrl)
			store.EXPECT().HighestNumber(gomock.Any(), "TXN").Return(tt.highest, nil)

			g := sequence.NewGenerator(store, "TXN", 8)
			assert.Equal(t, tt.want, g.Next(context.Background()))
		})
	}
}

func TestGenerator_FallsBackOnReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := sequence.NewMockStore(ctrl)
	store.EXPECT().HighestNumber(gomock.Any(), "TXN").Return(int64(0), errors.New("db down"))

	g := sequence.NewGenerator(store, "TXN", 8)
	id := g.Next(context.Background())

	// Timestamp fallback: unique but outside the padded sequence.
	assert.True(t, strings.HasPrefix(id, "TXN-T"), "got %q", id)
}

func TestGenerator_DistinctFallbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := sequence.NewMockStore(ctrl)
	store.EXPECT().HighestNumber(gomock.Any(), "TXN").Return(int64(0), errors.New("db down")).Times(2)

	g := sequence.NewGenerator(store, "TXN", 8)

	a := g.Next(context.Background())
	b := g.Next(context.Background())

	assert.NotEqual(t, a, b)
}
