package transaction_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/dmarieta/chatarra/internal/attachment"
	txhttp "github.com/dmarieta/chatarra/internal/http/transaction"
	"github.com/dmarieta/chatarra/internal/transaction"
)

const saveBody = `{
	"id": "TXN-00000007",
	"kind": "buy",
	"session_type": "walk_in",
	"employee": "maria",
	"expenses": 1000,
	"items": [{"name": "copper", "weight_grams": 5000, "unit_price": 4000}]
}`

func newTestRouter(t *testing.T) (http.Handler, *transaction.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)

	repo := transaction.NewMockRepository(ctrl)
	seq := transaction.NewMockSequencer(ctrl)
	uploader := attachment.NewMockUploader(ctrl)
	ledger := transaction.NewMockLedgerPoster(ctrl)
	stats := transaction.NewMockStatsRefresher(ctrl)
	notifier := transaction.NewMockNotifier(ctrl)

	stats.EXPECT().RefreshStats(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	notifier.EXPECT().DataChanged(gomock.Any(), gomock.Any()).AnyTimes()

	svc := transaction.NewService(
		repo, seq, attachment.NewPipeline(uploader, time.Second), ledger, stats, notifier)

	router := chi.NewRouter()
	txhttp.NewHandler(svc).Routes(router)

	return router, repo
}

func TestHandler_Save_NewTransactionAnswersCreated(t *testing.T) {
	router, repo := newTestRouter(t)

	repo.EXPECT().Exists(gomock.Any(), "TXN-00000007").Return(false, nil)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().ReplaceItems(gomock.Any(), "TXN-00000007", gomock.Any()).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(saveBody)))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_Save_ExistingTransactionAnswersOK(t *testing.T) {
	router, repo := newTestRouter(t)

	repo.EXPECT().Exists(gomock.Any(), "TXN-00000007").Return(true, nil)
	repo.EXPECT().UpdateFields(gomock.Any(), "TXN-00000007", gomock.Any()).Return(nil)
	repo.EXPECT().ReplaceItems(gomock.Any(), "TXN-00000007", gomock.Any()).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(saveBody)))

	assert.Equal(t, http.StatusOK, rec.Code)
}
