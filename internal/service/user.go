// File: internal/service/user.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"user-master/internal/cache"
	"user-master/internal/dto"
	"user-master/internal/model"
	"user-master/internal/store"
	"user-master/internal/worker"
)

var (
	// ErrNotFound 指定 ID 的使用者不存在
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate username 或 email 與既有資料衝突
	ErrDuplicate = errors.New("resource already exists")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UserStore 定義 UserService 需要的查詢能力，由 store.UserStore 實作
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	ListAll(ctx context.Context, req store.PageRequest) (*store.Page, error)
	ListActive(ctx context.Context, req store.PageRequest) (*store.Page, error)
	SearchByName(ctx context.Context, fragment string) ([]model.User, error)
	Save(ctx context.Context, u *model.User) (*model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// UserService 負責使用者的驗證、唯一性檢查、快取協調與 DTO 映射
// 依賴於啟動時明確注入的 store 與 cache
type UserService struct {
	store UserStore
	cache cache.Cache
	pool  worker.Pool

	hashPassword func(string) (string, error)
	now          func() time.Time
	logf         func(format string, args ...any)
}

func NewUserService(st UserStore, c cache.Cache, pool worker.Pool) *UserService {
	return &UserService{
		store:        st,
		cache:        c,
		pool:         pool,
		hashPassword: HashPassword,
		now:          time.Now,
		logf:         log.Printf,
	}
}

func userCacheKey(id int) string {
	return fmt.Sprintf("users:%d", id)
}

func mapUser(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func mapUsers(users []model.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *mapUser(&users[i]))
	}
	return out
}

func mapPage(p *store.Page) *dto.UserPageResponse {
	return &dto.UserPageResponse{
		Content:       mapUsers(p.Users),
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Page:          p.Page,
		Size:          p.Size,
	}
}

// audit 透過 worker pool 非同步寫入稽核日誌，pool 未注入時跳過
func (s *UserService) audit(format string, args ...any) {
	if s.pool == nil {
		return
	}
	s.pool.Submit(func() { s.logf(format, args...) })
}

func clampPage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// Create 建立新使用者：檢查 username/email 唯一性、哈希密碼後寫入
// 衝突時回傳 ErrDuplicate
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	req.Email = strings.ToLower(req.Email)

	exists, err := s.store.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("username already exists: %s: %w", req.Username, ErrDuplicate)
	}

	exists, err = s.store.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("email already exists: %s: %w", req.Email, ErrDuplicate)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Age:          req.Age,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		// 併發建立時以資料庫唯一約束為最後防線
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, fmt.Errorf("username or email already exists: %w", ErrDuplicate)
		}
		return nil, err
	}

	s.audit("user created: id=%d username=%s", saved.ID, saved.Username)
	return mapUser(saved), nil
}

// GetByID 先查快取，未命中時讀取 store 並回填快取
// 查無資料回傳 ErrNotFound
func (s *UserService) GetByID(ctx context.Context, id int) (*dto.UserResponse, error) {
	key := userCacheKey(id)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var resp dto.UserResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			return &resp, nil
		}
		// 快取內容異常時視同未命中
	}

	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("id=%d: %w", id, ErrNotFound)
	}

	resp := mapUser(user)
	if data, err := json.Marshal(resp); err == nil {
		if err := s.cache.Put(ctx, key, data); err != nil {
			s.logf("cache put failed: key=%s: %v", key, err)
		}
	}
	return resp, nil
}

// List 分頁查詢全部使用者
func (s *UserService) List(ctx context.Context, page, size int, sortBy, sortDirection string) (*dto.UserPageResponse, error) {
	page, size = clampPage(page, size)
	p, err := s.store.ListAll(ctx, store.PageRequest{
		Page:   page,
		Size:   size,
		SortBy: sortBy,
		Desc:   strings.EqualFold(sortDirection, "desc"),
	})
	if err != nil {
		return nil, err
	}
	return mapPage(p), nil
}

// ListByRole 查詢指定角色的使用者
func (s *UserService) ListByRole(ctx context.Context, role model.Role) ([]dto.UserResponse, error) {
	users, err := s.store.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return mapUsers(users), nil
}

// ListActive 分頁查詢啟用中的使用者，按建立時間由新到舊排序
func (s *UserService) ListActive(ctx context.Context, page, size int) (*dto.UserPageResponse, error) {
	page, size = clampPage(page, size)
	p, err := s.store.ListActive(ctx, store.PageRequest{
		Page:   page,
		Size:   size,
		SortBy: "created_at",
		Desc:   true,
	})
	if err != nil {
		return nil, err
	}
	return mapPage(p), nil
}

// Search 依姓或名搜尋使用者
func (s *UserService) Search(ctx context.Context, name string) ([]dto.UserResponse, error) {
	users, err := s.store.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return mapUsers(users), nil
}

// Update 更新使用者：名、姓、年齡一律覆寫；username 與 email 僅在值
// 改變時做唯一性檢查後更新。寫入成功後才驅逐快取。
func (s *UserService) Update(ctx context.Context, id int, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("id=%d: %w", id, ErrNotFound)
	}

	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.Age = req.Age

	if req.Username != existing.Username {
		exists, err := s.store.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("username already exists: %s: %w", req.Username, ErrDuplicate)
		}
		existing.Username = req.Username
	}

	req.Email = strings.ToLower(req.Email)
	if req.Email != existing.Email {
		exists, err := s.store.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("email already exists: %s: %w", req.Email, ErrDuplicate)
		}
		existing.Email = req.Email
	}

	existing.UpdatedAt = s.now()
	saved, err := s.store.Save(ctx, existing)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, fmt.Errorf("username or email already exists: %w", ErrDuplicate)
		}
		return nil, err
	}

	s.evict(ctx, id)
	s.audit("user updated: id=%d", id)
	return mapUser(saved), nil
}

// Delete 軟刪除：僅將 is_active 設為 false，資料列保留
func (s *UserService) Delete(ctx context.Context, id int) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("id=%d: %w", id, ErrNotFound)
	}

	existing.IsActive = false
	existing.UpdatedAt = s.now()
	if _, err := s.store.Save(ctx, existing); err != nil {
		return err
	}

	s.evict(ctx, id)
	s.audit("user deactivated: id=%d", id)
	return nil
}

// Stats 統計各角色人數與最近 30 天新增的使用者數
func (s *UserService) Stats(ctx context.Context) (*dto.UserStatsResponse, error) {
	counts := make(map[string]int64, 3)
	for _, role := range []model.Role{model.RoleUser, model.RoleAdmin, model.RoleModerator} {
		n, err := s.store.CountByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		counts[string(role)] = n
	}
	recent, err := s.store.CountCreatedSince(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	return &dto.UserStatsResponse{CountByRole: counts, CreatedLast30Days: recent}, nil
}

// evict 寫入成功後驅逐快取；先寫後逐，避免寫入失敗卻清掉有效快取
func (s *UserService) evict(ctx context.Context, id int) {
	if err := s.cache.Evict(ctx, userCacheKey(id)); err != nil {
		s.logf("cache evict failed: key=%s: %v", userCacheKey(id), err)
	}
}
