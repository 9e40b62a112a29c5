package inventory

type CreateStoreRequest struct {
	Code    string `json:"code" binding:"required,max=30"`
	Name    string `json:"name" binding:"required,max=150"`
	Address string `json:"address"`
}

type StoreResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at,omitempty"`
}

// StoreOption is the compact shape used by pickers.
type StoreOption struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type ItemResponse struct {
	ID           string  `json:"id"`
	StoreID      string  `json:"store_id"`
	StoreCode    string  `json:"store_code,omitempty"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Quantity     int     `json:"quantity"`
	SerialNumber *string `json:"serial_number"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}
