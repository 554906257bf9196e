package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	v1 "github.com/salesview-lab/salesview/internal/api/v1"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSaleRow scans one row selected with saleColumns.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanSaleRow(row scanner) (v1.Sale, error) {
	var s v1.Sale
	err := row.Scan(
		&s.ID,
		&s.CustomerID,
		&s.CustomerName,
		&s.PhoneNumber,
		&s.Gender,
		&s.Age,
		&s.CustomerRegion,
		&s.CustomerType,
		&s.ProductID,
		&s.ProductName,
		&s.Brand,
		&s.ProductCategory,
		pq.Array(&s.Tags),
		&s.Quantity,
		&s.PricePerUnit,
		&s.DiscountPercentage,
		&s.TotalAmount,
		&s.FinalAmount,
		&s.Date,
		&s.PaymentMethod,
		&s.OrderStatus,
		&s.DeliveryType,
		&s.StoreID,
		&s.StoreLocation,
		&s.SalespersonID,
		&s.EmployeeName,
		&s.CreatedAt,
	)
	if err != nil {
		return v1.Sale{}, fmt.Errorf("failed to scan sale row: %w", err)
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s, nil
}

// saleValues returns the column values of s in saleColumns order.
func saleValues(s *v1.Sale) []interface{} {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return []interface{}{
		s.ID,
		s.CustomerID,
		s.CustomerName,
		s.PhoneNumber,
		s.Gender,
		s.Age,
		s.CustomerRegion,
		s.CustomerType,
		s.ProductID,
		s.ProductName,
		s.Brand,
		s.ProductCategory,
		pq.Array(tags),
		s.Quantity,
		s.PricePerUnit,
		s.DiscountPercentage,
		s.TotalAmount,
		s.FinalAmount,
		s.Date,
		s.PaymentMethod,
		s.OrderStatus,
		s.DeliveryType,
		s.StoreID,
		s.StoreLocation,
		s.SalespersonID,
		s.EmployeeName,
		s.CreatedAt,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a literal substring into an ILIKE pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
