// Package db defines persistence models for the library database.
package db

// User represents an account. Kind is 1 for normal users, 2 for librarians.
type User struct {
	ID       int64
	Name     string
	Email    string
	PassHash string
	Kind     int64
}

// UserWithBorrowCount augments User with the number of active borrows,
// for the librarian user-management listing.
type UserWithBorrowCount struct {
	User
	BorrowedBookCount int64
}

// Author represents a book author. DateOfDeath is nil for living authors.
type Author struct {
	ID          int64
	Name        string
	DateOfBirth int64
	DateOfDeath *int64
	Description string
}

// Book represents a catalog entry. CanBeBorrowed is derived at read time as
// count > active borrows; it is never stored.
type Book struct {
	ID            int64
	Title         string
	AuthorID      int64
	PublishDate   int64
	Publisher     string
	Count         int64
	Synopsis      string
	Language      string
	CanBeBorrowed bool
}

// BookWithAuthor joins a book with its author row for the catalog listing.
type BookWithAuthor struct {
	Book
	Author Author
}

// Borrow is an active loan of one book by one user. The row is deleted when
// the book is returned.
type Borrow struct {
	ID         int64
	BookID     int64
	UserID     int64
	ValidUntil int64
}

// BorrowedBook is the per-user borrow listing projection.
type BorrowedBook struct {
	BorrowID     int64
	BookID       int64
	ValidUntil   int64
	ChaptersRead int64
}
