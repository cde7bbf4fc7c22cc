package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ErrBookNotFound reports a borrow attempt against a missing book.
var ErrBookNotFound = errors.New("book does not exist")

// ErrBorrowNotFound reports an operation on a missing borrow id.
var ErrBorrowNotFound = errors.New("borrow does not exist")

// borrowSeconds is the initial loan period: 30 days.
const borrowSeconds = 30 * 86400

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// BorrowBook runs the borrow workflow in one transaction: recompute
// availability, refuse duplicates for the same (book, user) pair, then insert
// the borrow with a 30-day deadline and zero chapters read.
//
// An unavailable book declines silently with alreadyBorrowed=false. The
// unique index on borrows(book_id, user_id) backs the duplicate pre-check, so
// an insert conflict is reported as alreadyBorrowed=true rather than an error.
func (d *DB) BorrowBook(ctx context.Context, userID, bookID int64) (alreadyBorrowed bool, err error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var canBorrow int
	err = tx.QueryRowContext(ctx, `
SELECT b.count > (SELECT COUNT(*) FROM borrows bo WHERE bo.book_id = b.book_id)
FROM books b WHERE b.book_id=?
`, bookID).Scan(&canBorrow)
	if err == sql.ErrNoRows {
		return false, ErrBookNotFound
	}
	if err != nil {
		return false, err
	}
	if canBorrow == 0 {
		return false, tx.Commit()
	}

	var timesBorrowed int64
	if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM borrows WHERE book_id=? AND user_id=?
`, bookID, userID).Scan(&timesBorrowed); err != nil {
		return false, err
	}
	if timesBorrowed >= 1 {
		return true, nil
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO borrows(book_id, user_id) VALUES(?, ?)`, bookID, userID)
	if isUniqueViolation(err, "borrows.book_id") {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	borrowID, err := res.LastInsertId()
	if err != nil {
		return false, err
	}

	validUntil := nowUnix() + borrowSeconds
	if _, err := tx.ExecContext(ctx, `
INSERT INTO borrow_data(borrow_id, valid_until, chapters_read) VALUES(?, ?, 0)
`, borrowID, validUntil); err != nil {
		return false, err
	}

	return false, tx.Commit()
}

// ListBorrowsByUser returns a user's active borrows with deadline and
// reading progress.
func (d *DB) ListBorrowsByUser(ctx context.Context, userID int64) ([]BorrowedBook, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT d.borrow_id, b.book_id, d.valid_until, d.chapters_read
FROM borrows b JOIN borrow_data d ON b.borrow_id = d.borrow_id
WHERE b.user_id=?
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BorrowedBook
	for rows.Next() {
		var bb BorrowedBook
		if err := rows.Scan(&bb.BorrowID, &bb.BookID, &bb.ValidUntil, &bb.ChaptersRead); err != nil {
			return nil, err
		}
		out = append(out, bb)
	}
	return out, rows.Err()
}

// ListAllBorrows returns every active borrow system-wide for librarian
// oversight.
func (d *DB) ListAllBorrows(ctx context.Context) ([]Borrow, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT b.borrow_id, b.book_id, b.user_id, d.valid_until
FROM borrows b JOIN borrow_data d ON b.borrow_id = d.borrow_id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Borrow
	for rows.Next() {
		var b Borrow
		if err := rows.Scan(&b.ID, &b.BookID, &b.UserID, &b.ValidUntil); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// LengthenBorrow pushes a borrow's deadline forward by the given number of
// days.
func (d *DB) LengthenBorrow(ctx context.Context, borrowID, days int64) error {
	if days <= 0 {
		return errors.New("days must be positive")
	}
	res, err := d.sql.ExecContext(ctx, `
UPDATE borrow_data SET valid_until = valid_until + ? WHERE borrow_id=?
`, days*86400, borrowID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// EndBorrow sets the deadline to now, forcing immediate overdue status. The
// borrow itself stays until the user returns the book.
func (d *DB) EndBorrow(ctx context.Context, borrowID int64) error {
	res, err := d.sql.ExecContext(ctx, `
UPDATE borrow_data SET valid_until = ? WHERE borrow_id=?
`, nowUnix(), borrowID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetBorrowOwner returns the borrowing user's id for ownership checks.
func (d *DB) GetBorrowOwner(ctx context.Context, borrowID int64) (int64, bool, error) {
	var userID int64
	err := d.sql.QueryRowContext(ctx, `SELECT user_id FROM borrows WHERE borrow_id=?`, borrowID).Scan(&userID)
	if err == nil {
		return userID, true, nil
	}
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	return 0, false, err
}

// ReturnBook deletes the borrow data and then the borrow row.
func (d *DB) ReturnBook(ctx context.Context, borrowID int64) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM borrow_data WHERE borrow_id=?`, borrowID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM borrows WHERE borrow_id=?`, borrowID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// SetChaptersRead stores the reading progress counter.
func (d *DB) SetChaptersRead(ctx context.Context, borrowID, value int64) error {
	if value < 0 {
		return errors.New("chapters read cannot be negative")
	}
	res, err := d.sql.ExecContext(ctx, `
UPDATE borrow_data SET chapters_read = ? WHERE borrow_id=?
`, value, borrowID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBorrowNotFound
	}
	return nil
}
