package store

import (
	"context"
	"fmt"
	"time"

	"user-master/internal/database"
	"user-master/internal/model"

	"github.com/jackc/pgx/v5"
)

const postColumns = `id, user_id, title, content, is_published, created_at`

type PostStore struct {
	db database.DB
}

func NewPostStore(db database.DB) *PostStore {
	return &PostStore{db: db}
}

func collectPosts(rows pgx.Rows) ([]model.Post, error) {
	defer rows.Close()
	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.IsPublished, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByUser 查詢某使用者的全部貼文
func (s *PostStore) ListByUser(ctx context.Context, u *model.User) ([]model.Post, error) {
	return s.ListByUserID(ctx, u.ID)
}

func (s *PostStore) ListByUserID(ctx context.Context, userID int) ([]model.Post, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUserID: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("ListByUserID: %w", err)
	}
	return posts, nil
}

// ListPublishedByUserID 查詢某使用者已發布的貼文
func (s *PostStore) ListPublishedByUserID(ctx context.Context, userID int) ([]model.Post, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = $1 AND is_published = TRUE ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("ListPublishedByUserID: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("ListPublishedByUserID: %w", err)
	}
	return posts, nil
}

// SearchByKeyword 依標題或內容做不分大小寫的關鍵字搜尋
func (s *PostStore) SearchByKeyword(ctx context.Context, keyword string) ([]model.Post, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE title ILIKE '%' || $1 || '%' OR content ILIKE '%' || $1 || '%'
		 ORDER BY id`,
		keyword)
	if err != nil {
		return nil, fmt.Errorf("SearchByKeyword: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("SearchByKeyword: %w", err)
	}
	return posts, nil
}

func (s *PostStore) CountByUserID(ctx context.Context, userID int) (int64, error) {
	var count int64
	row := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE user_id = $1`, userID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByUserID: %w", err)
	}
	return count, nil
}

// ListCreatedBetween 查詢建立時間落在 [start, end] 區間的貼文
func (s *PostStore) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.Post, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("ListCreatedBetween: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("ListCreatedBetween: %w", err)
	}
	return posts, nil
}
