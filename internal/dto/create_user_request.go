// File: internal/dto/create_user_request.go
package dto

// CreateUserRequest 定義建立新使用者的請求格式 (JSON)
// swagger:model dto.CreateUserRequest
type CreateUserRequest struct {
	// 使用者帳號，需全域唯一
	// required: true
	Username string `json:"username" validate:"required,min=3,max=50" example:"alice"`

	// 使用者 Email，需全域唯一 (會自動轉為小寫)
	// required: true
	Email string `json:"email" validate:"required,email" example:"alice@example.com"`

	// 使用者密碼 (僅以單向哈希儲存)
	// required: true
	Password string `json:"password" validate:"required,min=6" example:"Secret123!"`

	// 名
	// required: true
	FirstName string `json:"first_name" validate:"required" example:"Alice"`

	// 姓
	// required: true
	LastName string `json:"last_name" validate:"required" example:"Chen"`

	// 年齡
	Age int `json:"age" validate:"gte=0,lte=150" example:"30"`
}
