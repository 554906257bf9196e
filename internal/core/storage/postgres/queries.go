package postgres

// SQL for the sales table. Filtered reads (find, count, summary) are assembled
// per request by buildWhere; everything here is static and prepared once.

// saleColumns is the scan order used by scanSaleRow and the COPY column list.
var saleColumns = []string{
	"id",
	"customer_id",
	"customer_name",
	"phone_number",
	"gender",
	"age",
	"customer_region",
	"customer_type",
	"product_id",
	"product_name",
	"brand",
	"product_category",
	"tags",
	"quantity",
	"price_per_unit",
	"discount_percentage",
	"total_amount",
	"final_amount",
	"date",
	"payment_method",
	"order_status",
	"delivery_type",
	"store_id",
	"store_location",
	"salesperson_id",
	"employee_name",
	"created_at",
}

const (
	salesTable = "sales"

	// querySelectSales is completed with WHERE, ORDER BY and LIMIT/OFFSET.
	querySelectSales = `SELECT %s FROM sales`

	queryCountSales = `SELECT COUNT(*) FROM sales`

	// querySummarizeSales computes all four totals in a single pass.
	// COALESCE turns the NULL sums of an empty set into zeros.
	querySummarizeSales = `
		SELECT
			COALESCE(SUM(quantity), 0),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(total_amount - final_amount), 0),
			COUNT(*)
		FROM sales`

	queryDistinctCustomerRegion  = `SELECT DISTINCT customer_region FROM sales`
	queryDistinctGender          = `SELECT DISTINCT gender FROM sales`
	queryDistinctProductCategory = `SELECT DISTINCT product_category FROM sales`
	queryDistinctPaymentMethod   = `SELECT DISTINCT payment_method FROM sales`

	// queryDistinctTags flattens the tag arrays; empty tags never become options.
	queryDistinctTags = `
		SELECT DISTINCT tag
		FROM sales, unnest(tags) AS tag
		WHERE tag <> ''`

	queryAgeRange = `SELECT MIN(age), MAX(age) FROM sales`

	querySchemaExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'sales'
		)`
)
