package domain

import "time"

// Rating is a post-completion score one participant gives the other for a
// specific service. Unique on (service, from, to) — enforced at the
// application layer and backed by the storage constraint.
type Rating struct {
	ID         int64     `json:"id"`
	ServiceID  int64     `json:"service_id" gorm:"uniqueIndex:idx_rating_service_from_to"`
	FromUserID int64     `json:"from_user_id" gorm:"uniqueIndex:idx_rating_service_from_to"`
	ToUserID   int64     `json:"to_user_id" gorm:"uniqueIndex:idx_rating_service_from_to"`
	Score      int       `json:"score" validate:"required,min=1,max=5"`
	Comment    string    `json:"comment,omitempty" gorm:"type:text"`

	Punctuality *int `json:"punctuality,omitempty" validate:"omitempty,min=1,max=5"`
	Quality     *int `json:"quality,omitempty" validate:"omitempty,min=1,max=5"`
	Compliance  *int `json:"compliance,omitempty" validate:"omitempty,min=1,max=5"`

	CreatedAt time.Time `json:"created_at"`

	FromUser *User `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	ToUser   *User `json:"to_user,omitempty" gorm:"foreignKey:ToUserID"`
}
