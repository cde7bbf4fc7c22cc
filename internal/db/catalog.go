package db

import (
	"context"
	"database/sql"
	"errors"
)

// ErrAuthorNotFound reports a book referencing a missing author.
var ErrAuthorNotFound = errors.New("author does not exist")

// ListBooks returns every book joined with its author. CanBeBorrowed is
// derived per row as count > active borrows of that book.
func (d *DB) ListBooks(ctx context.Context) ([]BookWithAuthor, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT
  b.book_id, b.title, b.publish_date, b.publisher, b.count, b.synopsis, b.language,
  a.author_id, a.name, a.date_of_birth, a.date_of_death, a.description,
  b.count > (SELECT COUNT(*) FROM borrows bo WHERE bo.book_id = b.book_id) AS can_be_borrowed
FROM books b JOIN authors a ON b.author_id = a.author_id
ORDER BY b.title ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookWithAuthor
	for rows.Next() {
		var b BookWithAuthor
		var canBorrow int
		var death sql.NullInt64
		if err := rows.Scan(
			&b.ID, &b.Title, &b.PublishDate, &b.Publisher, &b.Count, &b.Synopsis, &b.Language,
			&b.Author.ID, &b.Author.Name, &b.Author.DateOfBirth, &death, &b.Author.Description,
			&canBorrow,
		); err != nil {
			return nil, err
		}
		b.AuthorID = b.Author.ID
		b.CanBeBorrowed = canBorrow != 0
		if death.Valid {
			v := death.Int64
			b.Author.DateOfDeath = &v
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListAuthorNames returns the id+name projection used to populate the author
// dropdown; the remaining fields stay zero.
func (d *DB) ListAuthorNames(ctx context.Context) ([]Author, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT author_id, name FROM authors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertBook creates a book with the default language tag.
func (d *DB) InsertBook(ctx context.Context, title string, authorID, publishDate int64, publisher string, count int64, synopsis string) (int64, error) {
	if title == "" {
		return 0, errors.New("title is required")
	}
	res, err := d.sql.ExecContext(ctx, `
INSERT INTO books(title, author_id, publish_date, publisher, count, synopsis, language)
VALUES(?, ?, ?, ?, ?, ?, 'ro')
`, title, authorID, publishDate, publisher, count, synopsis)
	if isForeignKeyViolation(err) {
		return 0, ErrAuthorNotFound
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateBook overwrites a book's mutable fields. Last writer wins; there is
// no optimistic-concurrency check.
func (d *DB) UpdateBook(ctx context.Context, id int64, title string, authorID, publishDate int64, publisher string, count int64, synopsis string) error {
	if id <= 0 {
		return errors.New("invalid book id")
	}
	_, err := d.sql.ExecContext(ctx, `
UPDATE books SET title=?, author_id=?, publish_date=?, publisher=?, count=?, synopsis=?
WHERE book_id=?
`, title, authorID, publishDate, publisher, count, synopsis, id)
	if isForeignKeyViolation(err) {
		return ErrAuthorNotFound
	}
	return err
}

// DeleteBookResult is the business outcome of a book deletion.
type DeleteBookResult int

const (
	BookDeleted DeleteBookResult = iota
	BookStillBorrowed
)

// DeleteBook removes a book unless an active borrow references it. The check
// and the delete run in one transaction so a concurrent borrow insert cannot
// race the delete.
func (d *DB) DeleteBook(ctx context.Context, id int64) (DeleteBookResult, error) {
	if id <= 0 {
		return 0, errors.New("invalid book id")
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var active int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM borrows WHERE book_id=?`, id).Scan(&active); err != nil {
		return 0, err
	}
	if active > 0 {
		return BookStillBorrowed, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE book_id=?`, id); err != nil {
		return 0, err
	}
	return BookDeleted, tx.Commit()
}

// CreateAuthor inserts a new author. There is no update path: author details
// are create-only.
func (d *DB) CreateAuthor(ctx context.Context, name string, dateOfBirth int64, dateOfDeath *int64, description string) (int64, error) {
	if name == "" {
		return 0, errors.New("author name is required")
	}
	res, err := d.sql.ExecContext(ctx, `
INSERT INTO authors(name, date_of_birth, date_of_death, description) VALUES(?, ?, ?, ?)
`, name, dateOfBirth, dateOfDeath, description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
