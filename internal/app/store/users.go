package store

import (
	"context"
	"fmt"
	"time"

	"incognichat/internal/app/user"
)

// userColumns is the column list every user query selects, in scanUser order.
const userColumns = `id, full_name, email, password_hash, alias, is_verified,
	otp_code, otp_expires_at, role, warning_count, is_typing_blocked,
	is_blocked, block_type, blocked_at, block_expires_at, is_deleted,
	is_online, last_seen, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Alias, &u.IsVerified,
		&u.OTPCode, &u.OTPExpiresAt, &u.Role, &u.WarningCount, &u.IsTypingBlocked,
		&u.IsBlocked, &u.BlockType, &u.BlockedAt, &u.BlockExpiresAt, &u.IsDeleted,
		&u.IsOnline, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateUser inserts a new account row.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, email, password_hash, alias, is_verified,
			otp_code, otp_expires_at, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.Alias, u.IsVerified,
		u.OTPCode, u.OTPExpiresAt, u.Role,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID fetches a user by id. Returns ErrNotFound if no row exists.
func (s *Store) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email. Returns ErrNotFound if no row exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// AliasExists reports whether alias is taken by any non-deleted account.
func (s *Store) AliasExists(ctx context.Context, alias string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE alias = $1 AND NOT is_deleted)`,
		alias).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("alias exists: %w", err)
	}
	return exists, nil
}

// UpdateUnverified refreshes an unverified account's registration details
// ahead of a new OTP round.
func (s *Store) UpdateUnverified(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET full_name = $2, password_hash = $3, otp_code = $4,
			otp_expires_at = $5, updated_at = now()
		WHERE id = $1 AND NOT is_verified`,
		u.ID, u.FullName, u.PasswordHash, u.OTPCode, u.OTPExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("update unverified user: %w", err)
	}
	return nil
}

// SetOTP stores a freshly issued verification code.
func (s *Store) SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET otp_code = $2, otp_expires_at = $3, updated_at = now()
		WHERE id = $1`,
		id, code, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	return nil
}

// MarkVerified flags the account verified and discards the OTP.
func (s *Store) MarkVerified(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET is_verified = TRUE, otp_code = '', otp_expires_at = NULL, updated_at = now()
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// SetOnline updates the user's online flag and last-seen timestamp.
func (s *Store) SetOnline(ctx context.Context, id string, online bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET is_online = $2, last_seen = now(), updated_at = now()
		WHERE id = $1`,
		id, online,
	)
	if err != nil {
		return fmt.Errorf("set online: %w", err)
	}
	return nil
}

// RecordViolation atomically increments the user's warning count and sets the
// typing lock once the count reaches the limit. The increment happens in a
// single UPDATE so that concurrent connections of the same user never lose a
// violation. The returned count and lock flag are the post-increment values.
func (s *Store) RecordViolation(ctx context.Context, id string) (int, bool, error) {
	var count int
	var typingBlocked bool

	err := s.pool.QueryRow(ctx, `
		UPDATE users
		SET warning_count = warning_count + 1,
			is_typing_blocked = is_typing_blocked OR (warning_count + 1 >= $2),
			updated_at = now()
		WHERE id = $1
		RETURNING warning_count, is_typing_blocked`,
		id, user.WarningLimit,
	).Scan(&count, &typingBlocked)
	if err != nil {
		return 0, false, fmt.Errorf("record violation: %w", notFound(err))
	}

	return count, typingBlocked, nil
}

// SaveEnforcement persists every enforcement-related field of u. Callers run
// the pure transitions on a freshly loaded record first, then write the result
// back here.
func (s *Store) SaveEnforcement(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET warning_count = $2, is_typing_blocked = $3, is_blocked = $4,
			block_type = $5, blocked_at = $6, block_expires_at = $7,
			is_deleted = $8, is_online = $9, updated_at = now()
		WHERE id = $1`,
		u.ID, u.WarningCount, u.IsTypingBlocked, u.IsBlocked,
		u.BlockType, u.BlockedAt, u.BlockExpiresAt,
		u.IsDeleted, u.IsOnline,
	)
	if err != nil {
		return fmt.Errorf("save enforcement: %w", err)
	}
	return nil
}

// UserFilter selects which accounts ListUsers returns.
type UserFilter string

const (
	FilterAll     UserFilter = "all"
	FilterActive  UserFilter = "active"
	FilterBlocked UserFilter = "blocked"
	FilterDeleted UserFilter = "deleted"
	FilterWarned  UserFilter = "warned"
)

// ListUsersParams carries the admin listing options.
type ListUsersParams struct {
	Search string
	Filter UserFilter
	Limit  int
	Offset int
}

// ListUsers returns non-admin accounts matching the filter, newest first,
// together with the total match count for pagination.
func (s *Store) ListUsers(ctx context.Context, p ListUsersParams) ([]*user.User, int, error) {
	where := `role <> 'admin'`
	args := []any{}

	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		where += fmt.Sprintf(` AND (full_name ILIKE $%d OR email ILIKE $%d OR alias ILIKE $%d)`,
			len(args), len(args), len(args))
	}

	switch p.Filter {
	case FilterActive:
		where += ` AND NOT is_blocked AND NOT is_deleted`
	case FilterBlocked:
		where += ` AND is_blocked`
	case FilterDeleted:
		where += ` AND is_deleted`
	case FilterWarned:
		where += ` AND warning_count > 0`
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, p.Limit, p.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// UserStats is the aggregate account overview shown on the admin dashboard.
type UserStats struct {
	TotalUsers      int
	ActiveUsers     int
	BlockedUsers    int
	OnlineUsers     int
	DeletedAccounts int
	RecentSignups   int
}

// GetUserStats returns aggregate counts over non-admin accounts.
func (s *Store) GetUserStats(ctx context.Context) (*UserStats, error) {
	var st UserStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE NOT is_blocked AND NOT is_deleted),
			count(*) FILTER (WHERE is_blocked),
			count(*) FILTER (WHERE is_online),
			count(*) FILTER (WHERE is_deleted),
			count(*) FILTER (WHERE created_at >= now() - interval '7 days')
		FROM users WHERE role <> 'admin'`,
	).Scan(&st.TotalUsers, &st.ActiveUsers, &st.BlockedUsers, &st.OnlineUsers,
		&st.DeletedAccounts, &st.RecentSignups)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &st, nil
}
