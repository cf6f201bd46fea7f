package store

import "user-master/internal/model"

// PageRequest 分頁查詢條件，Page 由 0 起算
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
	Desc   bool
}

// Page 分頁查詢結果，附帶總筆數與總頁數
type Page struct {
	Users         []model.User
	TotalElements int64
	TotalPages    int
	Page          int
	Size          int
}

// sortColumns 可排序欄位白名單，防止 ORDER BY 注入
var sortColumns = map[string]string{
	"id":         "id",
	"username":   "username",
	"email":      "email",
	"first_name": "first_name",
	"firstName":  "first_name",
	"last_name":  "last_name",
	"lastName":   "last_name",
	"age":        "age",
	"role":       "role",
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
}

func sortColumn(field string) string {
	if col, ok := sortColumns[field]; ok {
		return col
	}
	return "id"
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
