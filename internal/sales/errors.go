package sales

// Client facing messages. Existing clients match on the exact text.
const (
	msgBodyMissing      = "Request body is missing."
	msgLineItemsMissing = "Missing 'line_items' field."
	msgDiscountMissing  = "Missing 'discount' field."
	msgDiscountType     = "'discount' must be an int."
	msgLineItemsType    = "'line_items' must be a list."
	msgLineItemsEmpty   = "Request must include at least one line item."
	msgDiscountNegative = "'discount' must be >= 0."
	msgDiscountRange    = "'discount' is too large."
	msgLineItemTypes    = "A product's ID and quantity must be integers."
	msgQuantityPositive = "Each product must have a positive purchase quantity."
	msgQuantityRange    = "Each product's purchase quantity is too large."
	msgProductNotFound  = "Product with id %v not found."
)
