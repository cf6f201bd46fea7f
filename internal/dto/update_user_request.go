// File: internal/dto/update_user_request.go
package dto

// UpdateUserRequest 定義更新使用者資料的請求格式 (JSON)
// 名、姓、年齡一律覆寫；username 與 email 僅在值改變時檢查衝突後更新
// swagger:model dto.UpdateUserRequest
type UpdateUserRequest struct {
	// 使用者帳號
	// required: true
	Username string `json:"username" validate:"required,min=3,max=50" example:"alice"`

	// 使用者 Email (會自動轉為小寫)
	// required: true
	Email string `json:"email" validate:"required,email" example:"alice@example.com"`

	// 名
	// required: true
	FirstName string `json:"first_name" validate:"required" example:"Alice"`

	// 姓
	// required: true
	LastName string `json:"last_name" validate:"required" example:"Chen"`

	// 年齡
	Age int `json:"age" validate:"gte=0,lte=150" example:"31"`
}
