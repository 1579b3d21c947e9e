package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/http/middleware"
	"github.com/tbourn/go-groupbuy-backend/internal/repo"
	"github.com/tbourn/go-groupbuy-backend/internal/services"
)

var errBoom = errors.New("boom")

// ---------- test DB + repo shim ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testProposalRepo implements services.ProposalRepo over the repo package.
type testProposalRepo struct{}

func (testProposalRepo) CreateProposal(ctx context.Context, db *gorm.DB, p *domain.Proposal) error {
	return repo.CreateProposal(ctx, db, p)
}

func (testProposalRepo) ListProposals(ctx context.Context, db *gorm.DB) ([]domain.Proposal, error) {
	return repo.ListProposals(ctx, db)
}

func (testProposalRepo) GetProposal(ctx context.Context, db *gorm.DB, id int64) (*domain.Proposal, error) {
	return repo.GetProposal(ctx, db, id)
}

func (testProposalRepo) SetProposalStatus(ctx context.Context, db *gorm.DB, id int64, st domain.ProposalStatus) error {
	return repo.SetProposalStatus(ctx, db, id, st)
}

func (testProposalRepo) AggregateOrders(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.Aggregate, error) {
	return repo.AggregateOrders(ctx, db, ids)
}

func (testProposalRepo) AggregateOrdersFor(ctx context.Context, db *gorm.DB, id int64) (domain.Aggregate, error) {
	return repo.AggregateOrdersFor(ctx, db, id)
}

// ---------- stubs for failure paths ----------

type stubProposals struct {
	err  error
	view *services.ProposalView
}

func (s stubProposals) Create(context.Context, services.NewProposal) (*domain.Proposal, error) {
	return nil, s.err
}

func (s stubProposals) List(context.Context) ([]services.ProposalView, error) { return nil, s.err }

func (s stubProposals) Get(context.Context, int64) (*services.ProposalView, error) {
	return s.view, s.err
}

func (s stubProposals) Close(context.Context, int64) (services.Outcome, error) {
	return services.NotFound, s.err
}

type stubOrders struct {
	err      error
	statsErr error
	items    []domain.Order
}

func (s stubOrders) Create(context.Context, services.NewOrder) (*domain.Order, error) {
	return nil, s.err
}

func (s stubOrders) ListByProposal(context.Context, int64) ([]domain.Order, error) {
	return s.items, s.err
}

func (s stubOrders) Update(context.Context, int64, services.OrderFields) (services.Outcome, error) {
	return services.NotFound, s.err
}

func (s stubOrders) Delete(context.Context, int64) (services.Outcome, error) {
	return services.NotFound, s.err
}

func (s stubOrders) Stats(context.Context, int64) (int64, *time.Time, error) {
	return 0, nil, s.statsErr
}

type stubSweeper struct {
	n   int
	err error
}

func (s stubSweeper) Sweep(context.Context) (int, error) { return s.n, s.err }

// ---------- engine ----------

type env struct {
	db  *gorm.DB
	h   *Handlers
	r   *gin.Engine
	idm *services.IdempotencyService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newHandlerDB(t)
	sw := services.NewRetentionSweeper(db, services.DefaultRetentionGrace)
	idm := &services.IdempotencyService{DB: db, TTL: time.Hour}
	h := New(
		services.NewProposalService(db, testProposalRepo{}, sw),
		&services.OrderService{DB: db},
		sw,
		idm,
	)
	e := &env{db: db, h: h, idm: idm}
	e.r = newRouter(h, middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idm.Exists))
	return e
}

func newRouter(h *Handlers, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(mw...)
	r.GET("/proposals", h.ListProposals)
	r.POST("/proposals", h.CreateProposal)
	r.GET("/proposals/:id", h.GetProposal)
	r.PUT("/proposals/:id/close", h.CloseProposal)
	r.GET("/orders/:proposal_id", h.ListOrders)
	r.POST("/orders", h.CreateOrder)
	r.PUT("/orders/:id", h.UpdateOrder)
	r.DELETE("/orders/:id", h.DeleteOrder)
	r.POST("/maintenance/sweep", h.Sweep)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	er := decodeBody[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code=%q want %q", er.Code, code)
	}
	if er.RequestID == "" {
		t.Fatalf("missing request_id in %s", w.Body.String())
	}
}

const validProposal = `{"shop_name":" Noodle House ","menu_link":"https://m","deadline":" 11:30 ",
"delivery_time":"12:15","category":"lunch","initiator":"alice","platform":"foodpanda","threshold":%s}`

func createProposal(t *testing.T, e *env, threshold string) int64 {
	t.Helper()
	w := doJSON(t, e.r, http.MethodPost, "/proposals", fmt.Sprintf(validProposal, threshold))
	if w.Code != http.StatusCreated {
		t.Fatalf("create proposal: %d %s", w.Code, w.Body.String())
	}
	return decodeBody[CreatedResponse](t, w).ID
}

func createOrder(t *testing.T, e *env, proposalID int64, price string) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"proposal_id":%d,"user_name":"bob","item":"noodles","price":%s}`, proposalID, price)
	w := doJSON(t, e.r, http.MethodPost, "/orders", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", w.Code, w.Body.String())
	}
	return decodeBody[CreatedResponse](t, w).ID
}
