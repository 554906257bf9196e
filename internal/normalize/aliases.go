package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Field is a canonical Sale field name, spelled as its JSON key.
type Field string

const (
	FieldCustomerID         Field = "customerId"
	FieldCustomerName       Field = "customerName"
	FieldPhoneNumber        Field = "phoneNumber"
	FieldGender             Field = "gender"
	FieldAge                Field = "age"
	FieldCustomerRegion     Field = "customerRegion"
	FieldCustomerType       Field = "customerType"
	FieldProductID          Field = "productId"
	FieldProductName        Field = "productName"
	FieldBrand              Field = "brand"
	FieldProductCategory    Field = "productCategory"
	FieldTags               Field = "tags"
	FieldQuantity           Field = "quantity"
	FieldPricePerUnit       Field = "pricePerUnit"
	FieldDiscountPercentage Field = "discountPercentage"
	FieldTotalAmount        Field = "totalAmount"
	FieldFinalAmount        Field = "finalAmount"
	FieldDate               Field = "date"
	FieldPaymentMethod      Field = "paymentMethod"
	FieldOrderStatus        Field = "orderStatus"
	FieldDeliveryType       Field = "deliveryType"
	FieldStoreID            Field = "storeId"
	FieldStoreLocation      Field = "storeLocation"
	FieldSalespersonID      Field = "salespersonId"
	FieldEmployeeName       Field = "employeeName"
)

// Aliases lists, per canonical field, the source keys tried in order.
// The first key holding a non-empty value wins.
type Aliases map[Field][]string

// DefaultAliases returns the built-in table: the human-readable export header
// first, the canonical key second.
func DefaultAliases() Aliases {
	return Aliases{
		FieldCustomerID:         {"Customer ID", "customerId"},
		FieldCustomerName:       {"Customer Name", "customerName"},
		FieldPhoneNumber:        {"Phone Number", "phoneNumber"},
		FieldGender:             {"Gender", "gender"},
		FieldAge:                {"Age", "age"},
		FieldCustomerRegion:     {"Customer Region", "customerRegion"},
		FieldCustomerType:       {"Customer Type", "customerType"},
		FieldProductID:          {"Product ID", "productId"},
		FieldProductName:        {"Product Name", "productName"},
		FieldBrand:              {"Brand", "brand"},
		FieldProductCategory:    {"Product Category", "productCategory"},
		FieldTags:               {"Tags", "tags"},
		FieldQuantity:           {"Quantity", "quantity"},
		FieldPricePerUnit:       {"Price per Unit", "pricePerUnit"},
		FieldDiscountPercentage: {"Discount Percentage", "discountPercentage"},
		FieldTotalAmount:        {"Total Amount", "totalAmount"},
		FieldFinalAmount:        {"Final Amount", "finalAmount"},
		FieldDate:               {"Date", "date", "Transaction Date"},
		FieldPaymentMethod:      {"Payment Method", "paymentMethod"},
		FieldOrderStatus:        {"Order Status", "orderStatus"},
		FieldDeliveryType:       {"Delivery Type", "deliveryType"},
		FieldStoreID:            {"Store ID", "storeId"},
		FieldStoreLocation:      {"Store Location", "storeLocation"},
		FieldSalespersonID:      {"Salesperson ID", "salespersonId"},
		FieldEmployeeName:       {"Employee Name", "employeeName"},
	}
}

// Extend appends extra candidate keys after the existing ones.
// Unknown fields are rejected.
func (a Aliases) Extend(extra map[Field][]string) error {
	for field, keys := range extra {
		existing, ok := a[field]
		if !ok {
			return fmt.Errorf("unknown field %q in alias table", field)
		}
		a[field] = append(existing, keys...)
	}
	return nil
}

type aliasFile struct {
	Aliases map[Field][]string `yaml:"aliases"`
}

// LoadAliases returns the default table extended with the aliases declared in
// a YAML file:
//
//	aliases:
//	  customerId: ["Cust ID", "customer_id"]
//	  date: ["Order Date"]
//
// An empty path yields the default table.
func LoadAliases(path string) (Aliases, error) {
	aliases := DefaultAliases()
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file %s: %w", path, err)
	}

	var raw aliasFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}

	if err := aliases.Extend(raw.Aliases); err != nil {
		return nil, fmt.Errorf("alias file %s: %w", path, err)
	}
	return aliases, nil
}
