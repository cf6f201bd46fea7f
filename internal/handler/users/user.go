package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"user-master/internal/dto"
	"user-master/internal/model"
	"user-master/internal/service"

	"github.com/labstack/echo/v4"
)

// Service 定義 handler 依賴的使用者操作，由 service.UserService 實作
type Service interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id int) (*dto.UserResponse, error)
	List(ctx context.Context, page, size int, sortBy, sortDirection string) (*dto.UserPageResponse, error)
	ListByRole(ctx context.Context, role model.Role) ([]dto.UserResponse, error)
	ListActive(ctx context.Context, page, size int) (*dto.UserPageResponse, error)
	Search(ctx context.Context, name string) ([]dto.UserResponse, error)
	Update(ctx context.Context, id int, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (*dto.UserStatsResponse, error)
}

// writeServiceError 將服務層錯誤映射為 HTTP 狀態碼
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.HTTPError{Message: err.Error()})
	case errors.Is(err, service.ErrDuplicate):
		return c.JSON(http.StatusConflict, dto.HTTPError{Message: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
	}
}

func queryInt(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// CreateUserHandler 建立新使用者
// @Summary     Create a new user
// @Description 建立新帳號，username 與 email 需全域唯一 (Email 會自動轉小寫)
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       user body dto.CreateUserRequest true "使用者資料"
// @Success     201 {object} dto.UserResponse
// @Failure     400 {object} dto.HTTPError
// @Failure     409 {object} dto.HTTPError "username 或 email 已存在"
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users [post]
func CreateUserHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		resp, err := svc.Create(c.Request().Context(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

// GetUserHandler 透過使用者 ID 取得使用者資訊（讀取路徑走快取）
// @Summary     Get a user by ID
// @Description 透過 ID 查詢並回傳使用者詳細資料
// @Tags        users
// @Produce     json
// @Param       id   path      int  true  "使用者 ID"
// @Success     200  {object}  dto.UserResponse
// @Failure     400  {object}  dto.HTTPError  "參數錯誤"
// @Failure     404  {object}  dto.HTTPError  "使用者不存在"
// @Failure     500  {object}  dto.HTTPError  "伺服器錯誤"
// @Security    BasicAuth
// @Router      /users/{id} [get]
func GetUserHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		resp, err := svc.GetByID(c.Request().Context(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// ListUsersHandler 分頁查詢全部使用者
// @Summary     List users
// @Description 分頁查詢全部使用者，可指定排序欄位與方向
// @Tags        users
// @Produce     json
// @Param       page          query int    false "頁碼 (由 0 起算)" default(0)
// @Param       size          query int    false "每頁筆數" default(10)
// @Param       sortBy        query string false "排序欄位" default(id)
// @Param       sortDirection query string false "排序方向 asc/desc" default(asc)
// @Success     200 {object} dto.UserPageResponse
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users [get]
func ListUsersHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := queryInt(c, "page", 0)
		size := queryInt(c, "size", 10)
		sortBy := c.QueryParam("sortBy")
		if sortBy == "" {
			sortBy = "id"
		}
		sortDirection := c.QueryParam("sortDirection")
		if sortDirection == "" {
			sortDirection = "asc"
		}

		resp, err := svc.List(c.Request().Context(), page, size, sortBy, sortDirection)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// ListUsersByRoleHandler 查詢指定角色的使用者
// @Summary     List users by role
// @Description 查詢指定角色 (USER/ADMIN/MODERATOR) 的使用者
// @Tags        users
// @Produce     json
// @Param       role path string true "角色"
// @Success     200 {array}  dto.UserResponse
// @Failure     400 {object} dto.HTTPError "未知角色"
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/role/{role} [get]
func ListUsersByRoleHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := model.ParseRole(c.Param("role"))
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid role"})
		}
		resp, err := svc.ListByRole(c.Request().Context(), role)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// SearchUsersHandler 依姓名搜尋使用者
// @Summary     Search users by name
// @Description 依姓或名做不分大小寫的子字串搜尋
// @Tags        users
// @Produce     json
// @Param       name query string true "搜尋字串"
// @Success     200 {array}  dto.UserResponse
// @Failure     400 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/search [get]
func SearchUsersHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.QueryParam("name")
		if name == "" {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "name is required"})
		}
		resp, err := svc.Search(c.Request().Context(), name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// ListActiveUsersHandler 分頁查詢啟用中的使用者
// @Summary     List active users
// @Description 分頁查詢啟用中的使用者，按建立時間由新到舊排序
// @Tags        users
// @Produce     json
// @Param       page query int false "頁碼 (由 0 起算)" default(0)
// @Param       size query int false "每頁筆數" default(10)
// @Success     200 {object} dto.UserPageResponse
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/active [get]
func ListActiveUsersHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := queryInt(c, "page", 0)
		size := queryInt(c, "size", 10)
		resp, err := svc.ListActive(c.Request().Context(), page, size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// UpdateUserHandler 更新指定使用者資料
// @Summary     Update a user by ID
// @Description 更新使用者；username 與 email 僅在值改變時檢查衝突後更新
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       id   path int                   true "使用者 ID"
// @Param       user body dto.UpdateUserRequest true "更新資料"
// @Success     200 {object} dto.UserResponse
// @Failure     400 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError "使用者不存在"
// @Failure     409 {object} dto.HTTPError "username 或 email 與其他使用者衝突"
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/{id} [put]
func UpdateUserHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}

		var req dto.UpdateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		resp, err := svc.Update(c.Request().Context(), id, req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// DeleteUserHandler 軟刪除指定使用者
// @Summary     Delete a user by ID
// @Description 軟刪除：將使用者標記為停用，資料列保留
// @Tags        users
// @Param       id   path      int  true  "使用者 ID"
// @Success     204  "No Content"
// @Failure     400  {object}  dto.HTTPError  "參數錯誤"
// @Failure     404  {object}  dto.HTTPError  "使用者不存在"
// @Failure     500  {object}  dto.HTTPError  "伺服器錯誤"
// @Security    BasicAuth
// @Router      /users/{id} [delete]
func DeleteUserHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// UserStatsHandler 使用者統計（限管理員）
// @Summary     User statistics
// @Description 統計各角色人數與最近 30 天新增的使用者數
// @Tags        users
// @Produce     json
// @Success     200 {object} dto.UserStatsResponse
// @Failure     403 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/stats [get]
func UserStatsHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp, err := svc.Stats(c.Request().Context())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}
