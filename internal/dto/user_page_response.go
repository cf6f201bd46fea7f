// File: internal/dto/user_page_response.go
package dto

// UserPageResponse 分頁查詢結果，頁碼由 0 起算
// swagger:model dto.UserPageResponse
type UserPageResponse struct {
	Content       []UserResponse `json:"content"`
	TotalElements int64          `json:"total_elements" example:"42"`
	TotalPages    int            `json:"total_pages" example:"5"`
	Page          int            `json:"page" example:"0"`
	Size          int            `json:"size" example:"10"`
}
