// internal/models/review.go
package models

// Review is a buyer-submitted product review. IsVerifiedPurchase is true only
// when a License row exists for the same user and product at submission time.
type Review struct {
	BaseModel
	ProductID          string       `json:"product_id" gorm:"size:100;not null;index"`
	UserID             string       `json:"user_id" gorm:"size:100;not null;index"`
	Rating             int          `json:"rating" gorm:"not null"`
	Title              string       `json:"title" gorm:"size:255"`
	Body               string       `json:"body" gorm:"type:text"`
	IsVerifiedPurchase bool         `json:"is_verified_purchase" gorm:"not null;default:false"`
	Status             ReviewStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
}

func (Review) TableName() string {
	return "product_reviews"
}
