// Package domain defines the persistence models for group-order proposals
// and the orders attached to them. These types are mapped with GORM and form
// the core data layer of the application.
package domain

import (
	"errors"
	"time"
)

// MinuteLayout is the wire format of proposal creation times.
const MinuteLayout = "2006-01-02 15:04"

// ProposalStatus is the lifecycle state of a Proposal.
type ProposalStatus string

const (
	StatusOpen   ProposalStatus = "OPEN"
	StatusClosed ProposalStatus = "CLOSED"
)

// ErrInvalidTransition is returned when a status change is not allowed by
// the proposal lifecycle (OPEN -> CLOSED, then deletion only).
var ErrInvalidTransition = errors.New("invalid proposal status transition")

// Valid reports whether s is a known status.
func (s ProposalStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Transition validates a change from s to next. It reports changed=false for
// the idempotent CLOSED -> CLOSED case, and ErrInvalidTransition for anything
// that would reopen a proposal or involves an unknown status.
func (s ProposalStatus) Transition(next ProposalStatus) (changed bool, err error) {
	switch {
	case s == StatusOpen && next == StatusClosed:
		return true, nil
	case s == StatusClosed && next == StatusClosed:
		return false, nil
	default:
		return false, ErrInvalidTransition
	}
}

// Proposal is a group order opportunity tied to one shop and deadline.
//
// Fields:
//   - ID: autoincrement primary key, immutable once assigned.
//   - ShopName, MenuLink, Category, Initiator, Platform, Remarks: free text.
//   - Deadline, DeliveryTime: free-text time markers stored verbatim.
//   - Threshold: target order total; 0 means no threshold.
//   - Status: OPEN or CLOSED (enforced by DB constraint).
//   - CreatedAt: UTC, minute precision; drives retention and never changes.
//   - UpdatedAt: managed by GORM.
type Proposal struct {
	ID           int64          `json:"id"            gorm:"primaryKey;autoIncrement"`
	ShopName     string         `json:"shop_name"     gorm:"type:text;not null"`
	MenuLink     string         `json:"menu_link"     gorm:"type:text;not null"`
	Deadline     string         `json:"deadline"      gorm:"type:text;not null"`
	DeliveryTime string         `json:"delivery_time" gorm:"type:text;not null"`
	Category     string         `json:"category"      gorm:"type:text;not null"`
	Initiator    string         `json:"initiator"     gorm:"type:text;not null"`
	Platform     string         `json:"platform"      gorm:"type:text;not null"`
	Threshold    int64          `json:"threshold"     gorm:"not null;default:0"`
	Remarks      string         `json:"remarks"       gorm:"type:text;not null"`
	Status       ProposalStatus `json:"status"        gorm:"type:varchar(16);not null;default:'OPEN';index:idx_proposal_retention,priority:1;check:status IN ('OPEN','CLOSED')"`
	CreatedAt    time.Time      `json:"created_at"    gorm:"index:idx_proposal_retention,priority:2"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Proposal.
func (Proposal) TableName() string { return "proposals" }

// Order is one participant's item/price line attached to a Proposal.
// Orders are cascade-deleted with their proposal.
type Order struct {
	ID         int64     `json:"id"          gorm:"primaryKey;autoIncrement"`
	ProposalID int64     `json:"proposal_id" gorm:"not null;index:idx_proposal_orders"`
	UserName   string    `json:"user_name"   gorm:"type:text;not null"`
	Item       string    `json:"item"        gorm:"type:text;not null"`
	Price      int64     `json:"price"       gorm:"not null;default:0"`
	Remarks    string    `json:"remarks"     gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`

	Proposal Proposal `json:"-" gorm:"foreignKey:ProposalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// Aggregate is derived from a proposal's orders on read and never persisted.
type Aggregate struct {
	Total int64 `json:"current_total"`
	Count int64 `json:"order_count"`
}
