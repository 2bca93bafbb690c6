package models

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus parses a status value strictly: it accepts the four known
// statuses in any case and rejects everything else. Used where a caller
// supplies a status to apply.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusDelivered:
		return StatusDelivered, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

// ParseStatusFilter parses a status used to narrow a listing. Unknown or
// empty values mean "no filter" rather than an error, so stale or creative
// query strings return the unfiltered list.
func ParseStatusFilter(s string) (Status, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return ParseStatus(s)
}

// Order is a placed order with its line items.
type Order struct {
	ID            string      `gorm:"primaryKey;size:32" json:"id"`
	UserID        string      `gorm:"size:64;index;not null" json:"userId"`
	Items         []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Status        Status      `gorm:"size:16;index;not null" json:"status"`
	TotalAmount   float64     `gorm:"not null" json:"totalAmount"`
	PaymentMethod string      `gorm:"size:50;not null" json:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// OrderLine is one product entry inside an order. Position preserves the
// submission order of the lines.
type OrderLine struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID     string  `gorm:"size:32;index;not null" json:"-"`
	Position    int     `gorm:"not null" json:"-"`
	ProductID   string  `gorm:"size:64;index;not null" json:"productId"`
	ProductName string  `gorm:"size:255;not null" json:"productName"`
	SellerID    string  `gorm:"size:64;index;not null" json:"sellerId"`
	Price       float64 `gorm:"not null" json:"price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
}

// CloneItems returns fresh line copies suitable for attaching to a new
// order: database identity and parent linkage are reset, the product
// snapshot (name, seller, price, quantity) is kept as-is.
func (o *Order) CloneItems() []OrderLine {
	items := make([]OrderLine, len(o.Items))
	for i, line := range o.Items {
		items[i] = OrderLine{
			Position:    i,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			SellerID:    line.SellerID,
			Price:       line.Price,
			Quantity:    line.Quantity,
		}
	}
	return items
}

// NewID returns a 32-char hex order ID.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("models: rand.Read: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
