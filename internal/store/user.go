package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-master/internal/database"
	"user-master/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateKey 唯一鍵衝突（username 或 email 已存在）
var ErrDuplicateKey = errors.New("duplicate key")

const userColumns = `id, username, email, password_hash, first_name, last_name, age, role, is_active, created_at, updated_at`

type UserStore struct {
	db database.DB
}

func NewUserStore(db database.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var role string
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Age,
		&role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID 依 ID 查詢使用者，查無資料回傳 (nil, nil)
func (s *UserStore) GetByID(ctx context.Context, id int) (*model.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return u, nil
}

func (s *UserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	row := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByUsername: %w", err)
	}
	return exists, nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByEmail: %w", err)
	}
	return exists, nil
}

func (s *UserStore) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("ListByRole: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("ListByRole: %w", err)
	}
	return users, nil
}

// SearchByName 依姓或名做不分大小寫的子字串搜尋
func (s *UserStore) SearchByName(ctx context.Context, fragment string) ([]model.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%'
		 ORDER BY id`,
		fragment)
	if err != nil {
		return nil, fmt.Errorf("SearchByName: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("SearchByName: %w", err)
	}
	return users, nil
}

func (s *UserStore) listPage(ctx context.Context, where string, req PageRequest) (*Page, error) {
	var total int64
	row := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where)
	if err := row.Scan(&total); err != nil {
		return nil, err
	}

	dir := "ASC"
	if req.Desc {
		dir = "DESC"
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users`+where+
			` ORDER BY `+sortColumn(req.SortBy)+` `+dir+` LIMIT $1 OFFSET $2`,
		req.Size, req.Page*req.Size)
	if err != nil {
		return nil, err
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, err
	}
	return &Page{
		Users:         users,
		TotalElements: total,
		TotalPages:    totalPages(total, req.Size),
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

// ListAll 分頁查詢全部使用者
func (s *UserStore) ListAll(ctx context.Context, req PageRequest) (*Page, error) {
	p, err := s.listPage(ctx, ``, req)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return p, nil
}

// ListActive 分頁查詢 is_active = TRUE 的使用者
func (s *UserStore) ListActive(ctx context.Context, req PageRequest) (*Page, error) {
	p, err := s.listPage(ctx, ` WHERE is_active = TRUE`, req)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	return p, nil
}

// Save 寫入使用者：ID 為零值時新增，否則更新；updated_at 一律刷新。
// 唯一鍵衝突時回傳 ErrDuplicateKey。
func (s *UserStore) Save(ctx context.Context, u *model.User) (*model.User, error) {
	if u.ID == 0 {
		row := s.db.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, first_name, last_name, age, role, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at, updated_at`,
			u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Age, string(u.Role), u.IsActive,
		)
		if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			if isDuplicate(err) {
				return nil, fmt.Errorf("Save: %w", ErrDuplicateKey)
			}
			return nil, fmt.Errorf("Save: %w", err)
		}
		return u, nil
	}

	row := s.db.QueryRow(ctx,
		`UPDATE users
		 SET username = $1, email = $2, password_hash = $3, first_name = $4,
		     last_name = $5, age = $6, role = $7, is_active = $8, updated_at = NOW()
		 WHERE id = $9
		 RETURNING created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Age, string(u.Role), u.IsActive, u.ID,
	)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("Save: %w", ErrDuplicateKey)
		}
		return nil, fmt.Errorf("Save: %w", err)
	}
	return u, nil
}

// CountByRole 統計指定角色的使用者數
func (s *UserStore) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var count int64
	row := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, string(role))
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByRole: %w", err)
	}
	return count, nil
}

// CountCreatedSince 統計指定時間之後建立的使用者數
func (s *UserStore) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	row := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE created_at >= $1`, since)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("CountCreatedSince: %w", err)
	}
	return count, nil
}

// isDuplicate 判斷是否為 Postgres 唯一約束違反 (SQLSTATE 23505)
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, ErrDuplicateKey)
}
