// File: internal/dto/user_response.go
package dto

import "time"

// UserResponse 回傳的使用者資訊，不含密碼哈希
// swagger:model dto.UserResponse
type UserResponse struct {
	ID        int       `json:"id" example:"1"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	FirstName string    `json:"first_name" example:"Alice"`
	LastName  string    `json:"last_name" example:"Chen"`
	Age       int       `json:"age" example:"30"`
	Role      string    `json:"role" example:"USER"`
	IsActive  bool      `json:"is_active" example:"true"`
	CreatedAt time.Time `json:"created_at" example:"2025-05-01T15:04:05Z07:00"`
	UpdatedAt time.Time `json:"updated_at" example:"2025-05-01T15:04:05Z07:00"`
}
