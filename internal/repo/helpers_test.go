package repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

// newTestDB opens a unique in-memory database per test (with foreign keys on)
// and migrates the given models.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
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
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func allModels() []any {
	return []any{&domain.Proposal{}, &domain.Order{}, &domain.Idempotency{}}
}

func seedProposal(t *testing.T, db *gorm.DB, shop string, status domain.ProposalStatus, createdAt time.Time) *domain.Proposal {
	t.Helper()
	p := &domain.Proposal{ShopName: shop, Status: status, CreatedAt: createdAt}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed proposal %s: %v", shop, err)
	}
	return p
}

func seedOrder(t *testing.T, db *gorm.DB, proposalID int64, user string, price int64) *domain.Order {
	t.Helper()
	o := &domain.Order{ProposalID: proposalID, UserName: user, Item: "item-" + user, Price: price}
	if err := db.Omit("Proposal").Create(o).Error; err != nil {
		t.Fatalf("seed order %s: %v", user, err)
	}
	return o
}
