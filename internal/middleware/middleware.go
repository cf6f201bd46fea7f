package middleware

import (
	"context"
	"net/http"

	"user-master/internal/model"
	"user-master/internal/service"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "user"

const basicRealm = `Basic realm="user-master"`

// UserStore 提供認證所需的查詢能力，由 store.UserStore 實作
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// comparePassword 可於測試時覆寫以略過 bcrypt 比對
var comparePassword = service.ComparePassword

// BasicAuth 驗證 HTTP Basic 憑證：帳號需存在、啟用中且密碼比對成功
// 通過後將使用者放入 context
func BasicAuth(users UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, password, ok := c.Request().BasicAuth()
			if !ok {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, basicRealm)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}

			user, err := users.GetByUsername(c.Request().Context(), username)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "authentication unavailable")
			}
			if user == nil || !user.IsActive {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, basicRealm)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
			}
			if err := comparePassword(user.PasswordHash, password); err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, basicRealm)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
			}

			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// RequireAdmin 僅允許 ADMIN 角色，需先經過 BasicAuth
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(ContextUserKey).(*model.User)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
		}
		if user.Role != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		return next(c)
	}
}
