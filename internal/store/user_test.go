package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"user-master/internal/database"
	"user-master/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

/* ---------- 假實作 ---------- */

// fakeUserRow 實作 pgx.Row，用於模擬單筆掃描行為。
type fakeUserRow struct {
	scanErr error
	user    *model.User
	exists  bool
	count   int64
}

func (r *fakeUserRow) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	switch len(dest) {
	case 11:
		// 完整使用者列
		u := r.user
		*dest[0].(*int) = u.ID
		*dest[1].(*string) = u.Username
		*dest[2].(*string) = u.Email
		*dest[3].(*string) = u.PasswordHash
		*dest[4].(*string) = u.FirstName
		*dest[5].(*string) = u.LastName
		*dest[6].(*int) = u.Age
		*dest[7].(*string) = string(u.Role)
		*dest[8].(*bool) = u.IsActive
		*dest[9].(*time.Time) = u.CreatedAt
		*dest[10].(*time.Time) = u.UpdatedAt
	case 3:
		// INSERT RETURNING id, created_at, updated_at
		u := r.user
		*dest[0].(*int) = u.ID
		*dest[1].(*time.Time) = u.CreatedAt
		*dest[2].(*time.Time) = u.UpdatedAt
	case 2:
		// UPDATE RETURNING created_at, updated_at
		u := r.user
		*dest[0].(*time.Time) = u.CreatedAt
		*dest[1].(*time.Time) = u.UpdatedAt
	case 1:
		// EXISTS 或 COUNT
		switch d := dest[0].(type) {
		case *bool:
			*d = r.exists
		case *int64:
			*d = r.count
		default:
			panic("fakeUserRow.Scan: unexpected dest type")
		}
	default:
		panic("fakeUserRow.Scan: unexpected number of dest")
	}
	return nil
}

// fakeUserRows 實作 pgx.Rows，用於模擬多筆掃描行為。
type fakeUserRows struct {
	data    []model.User
	idx     int
	scanErr error
	err     error
}

func (r *fakeUserRows) Close()                                       {}
func (r *fakeUserRows) Err() error                                   { return r.err }
func (r *fakeUserRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeUserRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeUserRows) Next() bool                                   { return r.idx < len(r.data) }
func (r *fakeUserRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	u := r.data[r.idx]
	r.idx++
	return (&fakeUserRow{user: &u}).Scan(dest...)
}
func (r *fakeUserRows) Values() ([]any, error) { return nil, nil }
func (r *fakeUserRows) RawValues() [][]byte    { return nil }
func (r *fakeUserRows) Conn() *pgx.Conn        { return nil }

/* ---------- 完整測試 ---------- */

func sampleUser(now time.Time) model.User {
	return model.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "h",
		FirstName:    "Alice",
		LastName:     "Chen",
		Age:          30,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserStoreGet(t *testing.T) {
	now := time.Now().UTC()
	sample := sampleUser(now)

	t.Run("GetByID ok", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{user: &sample}
			},
		})
		got, err := st.GetByID(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, sample, *got)
	})

	t.Run("GetByID absent", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			},
		})
		got, err := st.GetByID(context.Background(), 1)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("GetByID err", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: errors.New("boom")}
			},
		})
		_, err := st.GetByID(context.Background(), 1)
		require.Error(t, err)
	})

	t.Run("GetByUsername ok", func(t *testing.T) {
		var gotArg any
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
				gotArg = args[0]
				return &fakeUserRow{user: &sample}
			},
		})
		got, err := st.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.Equal(t, "alice", gotArg)
		require.Equal(t, sample.Username, got.Username)
	})

	t.Run("GetByEmail absent", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			},
		})
		got, err := st.GetByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func TestUserStoreExists(t *testing.T) {
	t.Run("ExistsByUsername true", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{exists: true}
			},
		})
		ok, err := st.ExistsByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("ExistsByEmail false", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{exists: false}
			},
		})
		ok, err := st.ExistsByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("Exists err", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: errors.New("boom")}
			},
		})
		_, err := st.ExistsByUsername(context.Background(), "alice")
		require.Error(t, err)
	})
}

func TestUserStoreList(t *testing.T) {
	now := time.Now().UTC()
	sample := sampleUser(now)

	t.Run("ListByRole ok", func(t *testing.T) {
		var gotArg any
		st := NewUserStore(&database.FakeDB{
			QueryFn: func(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
				gotArg = args[0]
				return &fakeUserRows{data: []model.User{sample}}, nil
			},
		})
		got, err := st.ListByRole(context.Background(), model.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, "ADMIN", gotArg)
		require.Len(t, got, 1)
	})

	t.Run("SearchByName ok", func(t *testing.T) {
		var gotSQL string
		st := NewUserStore(&database.FakeDB{
			QueryFn: func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
				gotSQL = sql
				return &fakeUserRows{data: []model.User{sample}}, nil
			},
		})
		got, err := st.SearchByName(context.Background(), "ali")
		require.NoError(t, err)
		require.Contains(t, gotSQL, "ILIKE")
		require.Len(t, got, 1)
	})

	t.Run("query err", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
				return nil, errors.New("boom")
			},
		})
		_, err := st.ListByRole(context.Background(), model.RoleUser)
		require.Error(t, err)
	})

	t.Run("scan err", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
				return &fakeUserRows{data: []model.User{sample}, scanErr: errors.New("scan")}, nil
			},
		})
		_, err := st.SearchByName(context.Background(), "ali")
		require.Error(t, err)
	})
}

func TestUserStorePaging(t *testing.T) {
	now := time.Now().UTC()
	sample := sampleUser(now)

	t.Run("ListAll ok", func(t *testing.T) {
		var gotSQL string
		var gotArgs []any
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{count: 42}
			},
			QueryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
				gotSQL = sql
				gotArgs = args
				return &fakeUserRows{data: []model.User{sample}}, nil
			},
		})
		p, err := st.ListAll(context.Background(), PageRequest{Page: 2, Size: 10, SortBy: "username", Desc: true})
		require.NoError(t, err)
		require.Equal(t, int64(42), p.TotalElements)
		require.Equal(t, 5, p.TotalPages)
		require.Equal(t, 2, p.Page)
		require.Len(t, p.Users, 1)
		require.Contains(t, gotSQL, "ORDER BY username DESC")
		require.Equal(t, []any{10, 20}, gotArgs)
	})

	t.Run("ListAll rejects unknown sort field", func(t *testing.T) {
		var gotSQL string
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{count: 0}
			},
			QueryFn: func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
				gotSQL = sql
				return &fakeUserRows{}, nil
			},
		})
		_, err := st.ListAll(context.Background(), PageRequest{Page: 0, Size: 10, SortBy: "username; DROP TABLE users"})
		require.NoError(t, err)
		require.Contains(t, gotSQL, "ORDER BY id ASC")
	})

	t.Run("ListActive filters", func(t *testing.T) {
		var countSQL, listSQL string
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, _ ...any) pgx.Row {
				countSQL = sql
				return &fakeUserRow{count: 1}
			},
			QueryFn: func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
				listSQL = sql
				return &fakeUserRows{data: []model.User{sample}}, nil
			},
		})
		p, err := st.ListActive(context.Background(), PageRequest{Page: 0, Size: 10})
		require.NoError(t, err)
		require.Contains(t, countSQL, "is_active = TRUE")
		require.Contains(t, listSQL, "is_active = TRUE")
		require.Equal(t, int64(1), p.TotalElements)
	})

	t.Run("count err", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: errors.New("boom")}
			},
		})
		_, err := st.ListAll(context.Background(), PageRequest{Page: 0, Size: 10})
		require.Error(t, err)
	})
}

func TestUserStoreSave(t *testing.T) {
	now := time.Now().UTC()
	dupErr := &pgconn.PgError{Code: "23505"}

	t.Run("insert ok", func(t *testing.T) {
		var gotSQL string
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, _ ...any) pgx.Row {
				gotSQL = sql
				return &fakeUserRow{user: &model.User{ID: 7, CreatedAt: now, UpdatedAt: now}}
			},
		})
		u := &model.User{Username: "alice", Email: "alice@example.com", Role: model.RoleUser, IsActive: true}
		saved, err := st.Save(context.Background(), u)
		require.NoError(t, err)
		require.Contains(t, gotSQL, "INSERT INTO users")
		require.Equal(t, 7, saved.ID)
		require.Equal(t, now, saved.CreatedAt)
	})

	t.Run("insert duplicate", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: dupErr}
			},
		})
		_, err := st.Save(context.Background(), &model.User{Username: "alice"})
		require.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("update ok", func(t *testing.T) {
		var gotSQL string
		var gotArgs []any
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
				gotSQL = sql
				gotArgs = args
				return &fakeUserRow{user: &model.User{CreatedAt: now, UpdatedAt: now.Add(time.Minute)}}
			},
		})
		u := &model.User{ID: 7, Username: "alice", Email: "alice@example.com", Role: model.RoleUser, IsActive: true}
		saved, err := st.Save(context.Background(), u)
		require.NoError(t, err)
		require.Contains(t, gotSQL, "UPDATE users")
		require.Equal(t, 7, gotArgs[len(gotArgs)-1])
		require.Equal(t, now.Add(time.Minute), saved.UpdatedAt)
	})

	t.Run("update duplicate", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: dupErr}
			},
		})
		_, err := st.Save(context.Background(), &model.User{ID: 7})
		require.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("update err", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: errors.New("boom")}
			},
		})
		_, err := st.Save(context.Background(), &model.User{ID: 7})
		require.Error(t, err)
		require.False(t, errors.Is(err, ErrDuplicateKey))
	})
}

func TestUserStoreCounts(t *testing.T) {
	t.Run("CountByRole", func(t *testing.T) {
		var gotArg any
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
				gotArg = args[0]
				return &fakeUserRow{count: 3}
			},
		})
		n, err := st.CountByRole(context.Background(), model.RoleModerator)
		require.NoError(t, err)
		require.Equal(t, "MODERATOR", gotArg)
		require.Equal(t, int64(3), n)
	})

	t.Run("CountCreatedSince", func(t *testing.T) {
		since := time.Now().UTC().AddDate(0, 0, -30)
		var gotArg any
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
				gotArg = args[0]
				return &fakeUserRow{count: 5}
			},
		})
		n, err := st.CountCreatedSince(context.Background(), since)
		require.NoError(t, err)
		require.Equal(t, since, gotArg)
		require.Equal(t, int64(5), n)
	})

	t.Run("err", func(t *testing.T) {
		st := NewUserStore(&database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: errors.New("boom")}
			},
		})
		_, err := st.CountByRole(context.Background(), model.RoleUser)
		require.Error(t, err)
	})
}

func TestIsDuplicate(t *testing.T) {
	require.True(t, isDuplicate(&pgconn.PgError{Code: "23505"}))
	require.False(t, isDuplicate(&pgconn.PgError{Code: "23503"}))
	require.True(t, isDuplicate(ErrDuplicateKey))
	require.False(t, isDuplicate(errors.New("other")))
}

func TestSortColumnAndTotalPages(t *testing.T) {
	require.Equal(t, "first_name", sortColumn("firstName"))
	require.Equal(t, "created_at", sortColumn("createdAt"))
	require.Equal(t, "id", sortColumn(""))
	require.Equal(t, "id", sortColumn("evil"))

	require.Equal(t, 0, totalPages(10, 0))
	require.Equal(t, 1, totalPages(10, 10))
	require.Equal(t, 2, totalPages(11, 10))
	require.Equal(t, 0, totalPages(0, 10))
	require.False(t, strings.Contains(sortColumn("username; DROP"), ";"))
}
