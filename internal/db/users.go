// Package db contains database query helpers for the library service.
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ErrEmailTaken reports a signup against an already registered email.
var ErrEmailTaken = errors.New("email already registered")

// isUniqueViolation identifies constraint errors for a given index/column.
// modernc/sqlite surfaces constraint failures as strings.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") && strings.Contains(s, column)
}

// CreateUser inserts a normal-kind user and returns its database ID.
func (d *DB) CreateUser(ctx context.Context, name, email, passHash string) (int64, error) {
	if name == "" || email == "" || passHash == "" {
		return 0, errors.New("name, email, and password hash are required")
	}
	res, err := d.sql.ExecContext(ctx, `
INSERT INTO users(name, email, password, kind, created_at) VALUES(?, ?, ?, 1, ?)
`, name, email, passHash, nowUnix())
	if isUniqueViolation(err, "users.email") {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateLibrarian inserts a librarian-kind user. Used by first-run setup.
func (d *DB) CreateLibrarian(ctx context.Context, name, email, passHash string) (int64, error) {
	if name == "" || email == "" || passHash == "" {
		return 0, errors.New("name, email, and password hash are required")
	}
	res, err := d.sql.ExecContext(ctx, `
INSERT INTO users(name, email, password, kind, created_at) VALUES(?, ?, ?, 2, ?)
`, name, email, passHash, nowUnix())
	if isUniqueViolation(err, "users.email") {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// HasLibrarian reports whether any librarian account exists.
func (d *DB) HasLibrarian(ctx context.Context) (bool, error) {
	var n int64
	if err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE kind=2`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUserByEmail looks up a user by email.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*User, bool, error) {
	var u User
	err := d.sql.QueryRowContext(ctx, `
SELECT user_id, name, email, password, kind FROM users WHERE email=?
`, email).Scan(&u.ID, &u.Name, &u.Email, &u.PassHash, &u.Kind)
	if err == nil {
		return &u, true, nil
	}
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	return nil, false, err
}

// GetUserByID looks up a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id int64) (*User, bool, error) {
	var u User
	err := d.sql.QueryRowContext(ctx, `
SELECT user_id, name, email, password, kind FROM users WHERE user_id=?
`, id).Scan(&u.ID, &u.Name, &u.Email, &u.PassHash, &u.Kind)
	if err == nil {
		return &u, true, nil
	}
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	return nil, false, err
}

// GetUserKind fetches only the role column. Authorization checks re-read the
// role on every privileged call; it is never cached between requests.
func (d *DB) GetUserKind(ctx context.Context, id int64) (int64, bool, error) {
	var kind int64
	err := d.sql.QueryRowContext(ctx, `SELECT kind FROM users WHERE user_id=?`, id).Scan(&kind)
	if err == nil {
		return kind, true, nil
	}
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	return 0, false, err
}

// ListUsersWithBorrowCount returns all users with their active borrow counts,
// sorted by name.
func (d *DB) ListUsersWithBorrowCount(ctx context.Context) ([]UserWithBorrowCount, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT u.user_id, u.name, u.email, u.kind,
       (SELECT COUNT(*) FROM borrows b WHERE b.user_id = u.user_id) AS borrowed_book_count
FROM users u ORDER BY u.name ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserWithBorrowCount
	for rows.Next() {
		var u UserWithBorrowCount
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Kind, &u.BorrowedBookCount); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// PromoteUser sets a user's kind to librarian. Promoting a librarian again is
// a no-op, not an error.
func (d *DB) PromoteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid user id")
	}
	_, err := d.sql.ExecContext(ctx, `UPDATE users SET kind=2 WHERE user_id=?`, id)
	return err
}

// DeleteUserResult is the business outcome of a user deletion.
type DeleteUserResult int

const (
	UserDeleted DeleteUserResult = iota
	UserStillHasBorrows
)

// DeleteUser removes a user unless they still hold active borrows. The check
// and the delete run in one transaction. The caller is responsible for the
// cannot-delete-self rule.
func (d *DB) DeleteUser(ctx context.Context, id int64) (DeleteUserResult, error) {
	if id <= 0 {
		return 0, errors.New("invalid user id")
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var active int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM borrows WHERE user_id=?`, id).Scan(&active); err != nil {
		return 0, err
	}
	if active > 0 {
		return UserStillHasBorrows, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id=?`, id); err != nil {
		return 0, err
	}
	return UserDeleted, tx.Commit()
}
