package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

func TestOrdersStats_Error_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, _, err := OrdersStats(context.Background(), db, 1); err == nil {
		t.Fatalf("expected error due to missing orders table")
	}
}

func TestOrdersStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, allModels()...)
	count, maxAt, err := OrdersStats(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("OrdersStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestOrdersStats_CountAndLatest(t *testing.T) {
	db := newTestDB(t, allModels()...)
	p := seedProposal(t, db, "x", domain.StatusOpen, time.Now().UTC())
	o1 := seedOrder(t, db, p.ID, "a", 1)
	o2 := seedOrder(t, db, p.ID, "b", 2)

	t1 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	db.Model(&domain.Order{}).Where("id = ?", o1.ID).UpdateColumn("updated_at", t2)
	db.Model(&domain.Order{}).Where("id = ?", o2.ID).UpdateColumn("updated_at", t1)

	count, maxAt, err := OrdersStats(context.Background(), db, p.ID)
	if err != nil {
		t.Fatalf("OrdersStats error: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected (2, %v), got (%d, %v)", t2, count, maxAt)
	}
}
