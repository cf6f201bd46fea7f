package posts

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"user-master/internal/dto"
	"user-master/internal/model"

	"github.com/labstack/echo/v4"
)

// Store 定義 handler 依賴的貼文查詢能力，由 store.PostStore 實作
type Store interface {
	ListByUserID(ctx context.Context, userID int) ([]model.Post, error)
	ListPublishedByUserID(ctx context.Context, userID int) ([]model.Post, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]model.Post, error)
	CountByUserID(ctx context.Context, userID int) (int64, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.Post, error)
}

// PostCountResponse 貼文數統計
// swagger:model posts.PostCountResponse
type PostCountResponse struct {
	Count int64 `json:"count" example:"3"`
}

// ListUserPostsHandler 查詢某使用者的全部貼文
// @Summary     List posts by user
// @Description 查詢指定使用者的全部貼文
// @Tags        posts
// @Produce     json
// @Param       id path int true "使用者 ID"
// @Success     200 {array}  model.Post
// @Failure     400 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/{id}/posts [get]
func ListUserPostsHandler(st Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		posts, err := st.ListByUserID(c.Request().Context(), userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, posts)
	}
}

// ListPublishedUserPostsHandler 查詢某使用者已發布的貼文
// @Summary     List published posts by user
// @Description 查詢指定使用者已發布的貼文
// @Tags        posts
// @Produce     json
// @Param       id path int true "使用者 ID"
// @Success     200 {array}  model.Post
// @Failure     400 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/{id}/posts/published [get]
func ListPublishedUserPostsHandler(st Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		posts, err := st.ListPublishedByUserID(c.Request().Context(), userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, posts)
	}
}

// CountUserPostsHandler 統計某使用者的貼文數
// @Summary     Count posts by user
// @Description 統計指定使用者的貼文總數
// @Tags        posts
// @Produce     json
// @Param       id path int true "使用者 ID"
// @Success     200 {object} PostCountResponse
// @Failure     400 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /users/{id}/posts/count [get]
func CountUserPostsHandler(st Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		count, err := st.CountByUserID(c.Request().Context(), userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, PostCountResponse{Count: count})
	}
}

// SearchPostsHandler 依關鍵字搜尋貼文
// @Summary     Search posts
// @Description 依標題或內容做不分大小寫的關鍵字搜尋
// @Tags        posts
// @Produce     json
// @Param       keyword query string true "關鍵字"
// @Success     200 {array}  model.Post
// @Failure     400 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /posts/search [get]
func SearchPostsHandler(st Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		keyword := c.QueryParam("keyword")
		if keyword == "" {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "keyword is required"})
		}
		posts, err := st.SearchByKeyword(c.Request().Context(), keyword)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, posts)
	}
}

// ListPostsCreatedBetweenHandler 查詢指定時間區間內建立的貼文
// @Summary     List posts created between
// @Description 查詢建立時間落在 [start, end] 區間的貼文 (RFC3339)
// @Tags        posts
// @Produce     json
// @Param       start query string true "起始時間 (RFC3339)"
// @Param       end   query string true "結束時間 (RFC3339)"
// @Success     200 {array}  model.Post
// @Failure     400 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BasicAuth
// @Router      /posts [get]
func ListPostsCreatedBetweenHandler(st Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid start time"})
		}
		end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid end time"})
		}
		posts, err := st.ListCreatedBetween(c.Request().Context(), start, end)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, posts)
	}
}
