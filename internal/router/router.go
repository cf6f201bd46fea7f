// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"

	"user-master/internal/cache"
	"user-master/internal/database"
	"user-master/internal/handler"
	"user-master/internal/handler/posts"
	"user-master/internal/handler/users"
	"user-master/internal/middleware"
	"user-master/internal/service"
	"user-master/internal/store"
	"user-master/internal/worker"
)

// Setup 註冊所有路由與中介層，並完成 store 與 service 的組裝
func Setup(e *echo.Echo, db database.DB, cch cache.Cache, wp worker.Pool) {
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	svc := service.NewUserService(userStore, cch, wp)

	api := e.Group("/api")

	// 健康檢查（公開）
	api.GET("/users/health", handler.PingHandler(db, cch))

	auth := middleware.BasicAuth(userStore)

	// Users CRUD（需通過 Basic 認證）
	apiUsers := api.Group("/users", auth)
	apiUsers.POST("", users.CreateUserHandler(svc))
	apiUsers.GET("", users.ListUsersHandler(svc))
	apiUsers.GET("/active", users.ListActiveUsersHandler(svc))
	apiUsers.GET("/search", users.SearchUsersHandler(svc))
	apiUsers.GET("/stats", users.UserStatsHandler(svc), middleware.RequireAdmin)
	apiUsers.GET("/role/:role", users.ListUsersByRoleHandler(svc))
	apiUsers.GET("/:id", users.GetUserHandler(svc))
	apiUsers.PUT("/:id", users.UpdateUserHandler(svc))
	apiUsers.DELETE("/:id", users.DeleteUserHandler(svc))

	// 使用者貼文查詢
	apiUsers.GET("/:id/posts", posts.ListUserPostsHandler(postStore))
	apiUsers.GET("/:id/posts/published", posts.ListPublishedUserPostsHandler(postStore))
	apiUsers.GET("/:id/posts/count", posts.CountUserPostsHandler(postStore))

	apiPosts := api.Group("/posts", auth)
	apiPosts.GET("", posts.ListPostsCreatedBetweenHandler(postStore))
	apiPosts.GET("/search", posts.SearchPostsHandler(postStore))
}
