package mergefields

type Category string

const (
	CategoryCustomer   Category = "Customer"
	CategoryVehicle    Category = "Vehicle"
	CategoryFinancial  Category = "Financial"
	CategoryAgreement  Category = "Agreement"
	CategoryCompany    Category = "Company"
	CategorySystem     Category = "System"
	CategoryService    Category = "Service"
	CategoryDelivery   Category = "Delivery"
	CategoryPayment    Category = "Payment"
	CategoryAdditional Category = "Additional"
)

var categoryOrder = []Category{
	CategoryCustomer, CategoryVehicle, CategoryFinancial, CategoryAgreement, CategoryCompany,
	CategorySystem, CategoryService, CategoryDelivery, CategoryPayment, CategoryAdditional,
}

func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

var standardCatalog = []MergeField{
	{Key: "customer_name", Label: "Customer Name", Category: CategoryCustomer},
	{Key: "customer_first_name", Label: "Customer First Name", Category: CategoryCustomer},
	{Key: "customer_last_name", Label: "Customer Last Name", Category: CategoryCustomer},
	{Key: "customer_email", Label: "Customer Email", Category: CategoryCustomer},
	{Key: "customer_phone", Label: "Customer Phone", Category: CategoryCustomer},
	{Key: "customer_address", Label: "Customer Address", Category: CategoryCustomer},
	{Key: "customer_city", Label: "Customer City", Category: CategoryCustomer},
	{Key: "customer_state", Label: "Customer State", Category: CategoryCustomer},
	{Key: "customer_zip", Label: "Customer ZIP Code", Category: CategoryCustomer},
	{Key: "co_buyer_name", Label: "Co-Buyer Name", Category: CategoryCustomer},

	{Key: "vehicle_year", Label: "Vehicle Year", Category: CategoryVehicle},
	{Key: "vehicle_make", Label: "Vehicle Make", Category: CategoryVehicle},
	{Key: "vehicle_model", Label: "Vehicle Model", Category: CategoryVehicle},
	{Key: "vehicle_vin", Label: "VIN", Category: CategoryVehicle},
	{Key: "vehicle_stock_number", Label: "Stock Number", Category: CategoryVehicle},
	{Key: "vehicle_color", Label: "Vehicle Color", Category: CategoryVehicle},
	{Key: "vehicle_mileage", Label: "Odometer Reading", Category: CategoryVehicle},
	{Key: "vehicle_condition", Label: "Vehicle Condition", Category: CategoryVehicle},

	{Key: "sale_price", Label: "Sale Price", Category: CategoryFinancial},
	{Key: "down_payment", Label: "Down Payment", Category: CategoryFinancial},
	{Key: "trade_in_value", Label: "Trade-In Value", Category: CategoryFinancial},
	{Key: "amount_financed", Label: "Amount Financed", Category: CategoryFinancial},
	{Key: "interest_rate", Label: "Interest Rate (APR)", Category: CategoryFinancial},
	{Key: "loan_term", Label: "Loan Term (Months)", Category: CategoryFinancial},
	{Key: "tax_amount", Label: "Sales Tax", Category: CategoryFinancial},
	{Key: "total_amount", Label: "Total Amount", Category: CategoryFinancial},

	{Key: "agreement_number", Label: "Agreement Number", Category: CategoryAgreement},
	{Key: "agreement_date", Label: "Agreement Date", Category: CategoryAgreement},
	{Key: "agreement_type", Label: "Agreement Type", Category: CategoryAgreement},
	{Key: "effective_date", Label: "Effective Date", Category: CategoryAgreement},
	{Key: "expiration_date", Label: "Expiration Date", Category: CategoryAgreement},
	{Key: "lease_term", Label: "Lease Term (Months)", Category: CategoryAgreement},
	{Key: "monthly_payment", Label: "Monthly Payment", Category: CategoryAgreement},

	{Key: "company_name", Label: "Dealership Name", Category: CategoryCompany},
	{Key: "company_address", Label: "Dealership Address", Category: CategoryCompany},
	{Key: "company_phone", Label: "Dealership Phone", Category: CategoryCompany},
	{Key: "company_email", Label: "Dealership Email", Category: CategoryCompany},
	{Key: "company_license", Label: "Dealer License Number", Category: CategoryCompany},
	{Key: "salesperson_name", Label: "Salesperson", Category: CategoryCompany},

	{Key: "current_date", Label: "Current Date", Category: CategorySystem},
	{Key: "current_time", Label: "Current Time", Category: CategorySystem},
	{Key: "document_id", Label: "Document ID", Category: CategorySystem},
	{Key: "template_version", Label: "Template Version", Category: CategorySystem},

	{Key: "service_ticket_number", Label: "Service Ticket Number", Category: CategoryService},
	{Key: "service_description", Label: "Service Description", Category: CategoryService},
	{Key: "service_technician", Label: "Technician", Category: CategoryService},
	{Key: "service_labor_cost", Label: "Labor Cost", Category: CategoryService},
	{Key: "service_parts_cost", Label: "Parts Cost", Category: CategoryService},
	{Key: "warranty_term", Label: "Warranty Term", Category: CategoryService},

	{Key: "delivery_date", Label: "Delivery Date", Category: CategoryDelivery},
	{Key: "delivery_address", Label: "Delivery Address", Category: CategoryDelivery},
	{Key: "delivery_driver", Label: "Delivery Driver", Category: CategoryDelivery},
	{Key: "delivery_fee", Label: "Delivery Fee", Category: CategoryDelivery},

	{Key: "payment_method", Label: "Payment Method", Category: CategoryPayment},
	{Key: "payment_due_date", Label: "Payment Due Date", Category: CategoryPayment},
	{Key: "first_payment_date", Label: "First Payment Date", Category: CategoryPayment},
	{Key: "payment_amount", Label: "Payment Amount", Category: CategoryPayment},

	{Key: "notes", Label: "Notes", Category: CategoryAdditional},
	{Key: "special_terms", Label: "Special Terms", Category: CategoryAdditional},
}
