package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/repo"
)

// newTestDB opens a unique, fully migrated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// repoShim forwards ProposalRepo calls to the repo package.
type repoShim struct{}

func (repoShim) CreateProposal(ctx context.Context, db *gorm.DB, p *domain.Proposal) error {
	return repo.CreateProposal(ctx, db, p)
}

func (repoShim) ListProposals(ctx context.Context, db *gorm.DB) ([]domain.Proposal, error) {
	return repo.ListProposals(ctx, db)
}

func (repoShim) GetProposal(ctx context.Context, db *gorm.DB, id int64) (*domain.Proposal, error) {
	return repo.GetProposal(ctx, db, id)
}

func (repoShim) SetProposalStatus(ctx context.Context, db *gorm.DB, id int64, st domain.ProposalStatus) error {
	return repo.SetProposalStatus(ctx, db, id, st)
}

func (repoShim) AggregateOrders(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.Aggregate, error) {
	return repo.AggregateOrders(ctx, db, ids)
}

func (repoShim) AggregateOrdersFor(ctx context.Context, db *gorm.DB, id int64) (domain.Aggregate, error) {
	return repo.AggregateOrdersFor(ctx, db, id)
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)}
}

// fixture wires the services against one database and clock.
type fixture struct {
	db        *gorm.DB
	clk       *clock
	sweeper   *RetentionSweeper
	proposals *ProposalService
	orders    *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	clk := newClock()
	sw := &RetentionSweeper{DB: db, Grace: DefaultRetentionGrace, Now: clk.Now}
	ps := NewProposalService(db, repoShim{}, sw)
	ps.Now = clk.Now
	return &fixture{
		db:        db,
		clk:       clk,
		sweeper:   sw,
		proposals: ps,
		orders:    &OrderService{DB: db},
	}
}

func (f *fixture) mustCreateProposal(t *testing.T, shop string, threshold int64) *domain.Proposal {
	t.Helper()
	p, err := f.proposals.Create(context.Background(), NewProposal{
		ShopName:     shop,
		MenuLink:     "https://menu.example/" + shop,
		Deadline:     "12:00",
		DeliveryTime: "12:30",
		Category:     "lunch",
		Initiator:    "alice",
		Platform:     "foodpanda",
		Threshold:    threshold,
	})
	if err != nil {
		t.Fatalf("create proposal %s: %v", shop, err)
	}
	return p
}

func (f *fixture) mustCreateOrder(t *testing.T, proposalID int64, user string, price int64) *domain.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), NewOrder{
		ProposalID: proposalID,
		UserName:   user,
		Item:       "item-" + user,
		Price:      price,
	})
	if err != nil {
		t.Fatalf("create order %s: %v", user, err)
	}
	return o
}

// backdate rewrites a proposal's creation time.
func (f *fixture) backdate(t *testing.T, id int64, d time.Duration) {
	t.Helper()
	at := f.clk.Now().UTC().Add(-d).Truncate(time.Minute)
	if err := f.db.Model(&domain.Proposal{}).Where("id = ?", id).Update("created_at", at).Error; err != nil {
		t.Fatalf("backdate %d: %v", id, err)
	}
}

func findView(views []ProposalView, id int64) (ProposalView, bool) {
	for _, v := range views {
		if v.ID == id {
			return v, true
		}
	}
	return ProposalView{}, false
}
