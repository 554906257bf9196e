package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one transaction line. It is the only record type the system stores:
// created by ingestion or the single-record insert endpoint, never updated.
type Sale struct {
	// ID is assigned by the store when empty.
	ID string `json:"id"`

	// --- Customer ---

	CustomerID     string `json:"customerId"`
	CustomerName   string `json:"customerName"`
	PhoneNumber    string `json:"phoneNumber"`
	Gender         string `json:"gender"`
	Age            int    `json:"age"`
	CustomerRegion string `json:"customerRegion"`
	CustomerType   string `json:"customerType"`

	// --- Product ---

	ProductID       string   `json:"productId"`
	ProductName     string   `json:"productName"`
	Brand           string   `json:"brand"`
	ProductCategory string   `json:"productCategory"`
	Tags            []string `json:"tags"`

	// --- Amounts ---

	Quantity           int             `json:"quantity"`
	PricePerUnit       decimal.Decimal `json:"pricePerUnit"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	FinalAmount        decimal.Decimal `json:"finalAmount"`

	// --- Order ---

	Date          time.Time `json:"date"`
	PaymentMethod string    `json:"paymentMethod"`
	OrderStatus   string    `json:"orderStatus"`
	DeliveryType  string    `json:"deliveryType"`
	StoreID       string    `json:"storeId"`
	StoreLocation string    `json:"storeLocation"`
	SalespersonID string    `json:"salespersonId"`
	EmployeeName  string    `json:"employeeName"`

	// CreatedAt is set by the store on insert.
	CreatedAt time.Time `json:"createdAt"`
}

// Discount is the amount taken off the gross total for this line.
func (s *Sale) Discount() decimal.Decimal {
	return s.TotalAmount.Sub(s.FinalAmount)
}

// Validate enforces the persistence invariant: identity fields present and a real date.
// Every other field defaults to its zero value rather than failing.
func (s *Sale) Validate() error {
	if s.CustomerID == "" {
		return fmt.Errorf("customerId is required")
	}

	if s.CustomerName == "" {
		return fmt.Errorf("customerName is required")
	}

	if s.ProductID == "" {
		return fmt.Errorf("productId is required")
	}

	if s.Date.IsZero() {
		return fmt.Errorf("date is required")
	}

	return nil
}
