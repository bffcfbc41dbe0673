package user

import "time"

type User struct {
	ID       uint64    `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"type:text;not null" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Birthday time.Time `gorm:"type:date;not null" json:"birthday"`
	Timezone string    `gorm:"type:text;not null;default:'UTC'" json:"timezone"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}
