// internal/models/license.go
package models

import (
	"github.com/google/uuid"
)

// License is one issued key per purchased line item. Purchase-flow keys use the
// KEY- format; admin-issued keys use the EXE- format. Licenses are perpetual
// and immutable once issued; admins hard-revoke by deleting the row.
type License struct {
	BaseModel
	UserID      string        `json:"user_id" gorm:"size:100;not null;index"`
	ProductID   string        `json:"product_id" gorm:"size:100;not null;index"`
	OrderID     *uuid.UUID    `json:"order_id" gorm:"type:uuid;index"`
	LicenseKey  string        `json:"license_key" gorm:"size:64;not null;index"`
	LicenseTier string        `json:"license_tier" gorm:"size:100"`
	Status      LicenseStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
}
