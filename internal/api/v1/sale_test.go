package v1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSale_Validation(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		sale    Sale
		wantErr bool
	}{
		{
			name: "valid sale with identity fields and date",
			sale: Sale{
				CustomerID:   "C1",
				CustomerName: "Jane",
				ProductID:    "P1",
				Date:         now,
			},
			wantErr: false,
		},
		{
			name: "missing customer id",
			sale: Sale{
				CustomerName: "Jane",
				ProductID:    "P1",
				Date:         now,
			},
			wantErr: true,
		},
		{
			name: "missing customer name",
			sale: Sale{
				CustomerID: "C1",
				ProductID:  "P1",
				Date:       now,
			},
			wantErr: true,
		},
		{
			name: "missing product id",
			sale: Sale{
				CustomerID:   "C1",
				CustomerName: "Jane",
				Date:         now,
			},
			wantErr: true,
		},
		{
			name: "zero date",
			sale: Sale{
				CustomerID:   "C1",
				CustomerName: "Jane",
				ProductID:    "P1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sale.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSale_Discount(t *testing.T) {
	s := Sale{
		TotalAmount: decimal.RequireFromString("120.50"),
		FinalAmount: decimal.RequireFromString("100.25"),
	}
	if got := s.Discount(); !got.Equal(decimal.RequireFromString("20.25")) {
		t.Errorf("Discount() = %s, want 20.25", got)
	}
}

func TestSale_JSONKeys(t *testing.T) {
	s := Sale{
		CustomerID:  "C1",
		PhoneNumber: "9876543210",
		Tags:        []string{"sale"},
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"customerId", "phoneNumber", "tags", "date", "totalAmount", "paymentMethod"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected JSON key %q in %s", key, raw)
		}
	}
}
