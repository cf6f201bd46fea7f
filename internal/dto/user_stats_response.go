// File: internal/dto/user_stats_response.go
package dto

// UserStatsResponse 使用者統計資訊
// swagger:model dto.UserStatsResponse
type UserStatsResponse struct {
	// 各角色的使用者數
	CountByRole map[string]int64 `json:"count_by_role"`

	// 最近 30 天內建立的使用者數
	CreatedLast30Days int64 `json:"created_last_30_days" example:"7"`
}
