package graph

import "fmt"

// Fit classes
const (
	FitSlim    = "Slim"
	FitRegular = "Regular"
	FitRelaxed = "Relaxed"
)

// Product represents a catalog item in the graph
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Fit      string `json:"fit"`
	Brand    string `json:"brand"`
	Size     string `json:"size"`
}

// properties returns the node properties written on seed
func (p Product) properties() map[string]interface{} {
	return map[string]interface{}{
		"id":       p.ID,
		"name":     p.Name,
		"category": p.Category,
		"fit":      p.Fit,
		"brand":    p.Brand,
		"size":     p.Size,
	}
}

// SeedCatalog returns the fixed demo catalog
func SeedCatalog() []Product {
	return []Product{
		{ID: "zara_blazer_001", Name: "Zara Structured Blazer", Category: "Blazer", Fit: FitSlim, Brand: "Zara", Size: "M"},
		{ID: "hm_jacket_002", Name: "HM Slim Fit Jacket", Category: "Blazer", Fit: FitSlim, Brand: "H&M", Size: "M"},
	}
}

// Verdict is the result of checking a candidate product against a user's constraints
type Verdict struct {
	Blocked     bool   `json:"blocked"`
	UserID      string `json:"user_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Conflict    string `json:"conflict,omitempty"`
	Message     string `json:"message"`
}

// Verdict messages
const (
	passMessage     = "✅ Green light! Fits your profile."
	blockingMessage = "⚠️ STOP! FitGraph recalls you have '%s'. This item ('%s') is likely too slim."
)

func newPassVerdict(userID, productID, productName string) *Verdict {
	return &Verdict{
		UserID:      userID,
		ProductID:   productID,
		ProductName: productName,
		Message:     passMessage,
	}
}

func newBlockingVerdict(userID string, product *Product, conflict string) *Verdict {
	return &Verdict{
		Blocked:     true,
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Conflict:    conflict,
		Message:     fmt.Sprintf(blockingMessage, conflict, product.Name),
	}
}
