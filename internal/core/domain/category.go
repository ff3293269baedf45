package domain

type Category string

const (
	CategoryCode     Category = "CODE"
	CategoryWeb      Category = "WEB"
	CategoryEmail    Category = "EMAIL"
	CategoryFile     Category = "FILE"
	CategoryPassword Category = "PASSWORD"
	CategoryData     Category = "DATA"
	CategoryText     Category = "TEXT"
)

// Categories lists the closed category set in a stable order.
func Categories() []Category {
	return []Category{
		CategoryCode,
		CategoryWeb,
		CategoryEmail,
		CategoryFile,
		CategoryPassword,
		CategoryData,
		CategoryText,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Classification is the immutable result of classifying one clipboard value.
type Classification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}
