// Package db tests verify catalog, account, and borrow behavior.
package db

import (
	"context"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	d, err := Open(ctx, t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func seedUser(t *testing.T, d *DB, email string) int64 {
	t.Helper()
	id, err := d.CreateUser(context.Background(), "user "+email, email, "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return id
}

func seedBook(t *testing.T, d *DB, title string, count int64) int64 {
	t.Helper()
	ctx := context.Background()
	authorID, err := d.CreateAuthor(ctx, "author of "+title, 100, nil, "")
	if err != nil {
		t.Fatalf("CreateAuthor: %v", err)
	}
	bookID, err := d.InsertBook(ctx, title, authorID, 200, "pub", count, "syn")
	if err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	return bookID
}

// TestCreateUserDuplicateEmail maps the unique email index to ErrEmailTaken.
func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	seedUser(t, d, "a@b.c")
	_, err := d.CreateUser(ctx, "other", "a@b.c", "hash2")
	if err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

// TestBorrowWorkflow covers the happy path and the deadline/progress defaults.
func TestBorrowWorkflow(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")
	bookID := seedBook(t, d, "Ion", 2)

	already, err := d.BorrowBook(ctx, userID, bookID)
	if err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	if already {
		t.Fatalf("first borrow reported as duplicate")
	}

	borrows, err := d.ListBorrowsByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListBorrowsByUser: %v", err)
	}
	if len(borrows) != 1 {
		t.Fatalf("expected 1 borrow, got %d", len(borrows))
	}
	b := borrows[0]
	if b.BookID != bookID {
		t.Fatalf("unexpected book id %d", b.BookID)
	}
	if b.ChaptersRead != 0 {
		t.Fatalf("chapters read should start at 0, got %d", b.ChaptersRead)
	}
	want := time.Now().Unix() + 30*86400
	if b.ValidUntil < want-5 || b.ValidUntil > want+5 {
		t.Fatalf("valid_until %d not ~30 days out (want ~%d)", b.ValidUntil, want)
	}
}

// TestBorrowDuplicate reports a repeat borrow of the same book without
// creating a second row.
func TestBorrowDuplicate(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")
	bookID := seedBook(t, d, "Ion", 2)

	if _, err := d.BorrowBook(ctx, userID, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	already, err := d.BorrowBook(ctx, userID, bookID)
	if err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	if !already {
		t.Fatalf("expected duplicate borrow to be reported")
	}
	borrows, err := d.ListBorrowsByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListBorrowsByUser: %v", err)
	}
	if len(borrows) != 1 {
		t.Fatalf("expected 1 borrow, got %d", len(borrows))
	}
}

// TestBorrowUnavailable declines silently when all copies are out.
func TestBorrowUnavailable(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	first := seedUser(t, d, "a@b.c")
	second := seedUser(t, d, "x@y.z")
	bookID := seedBook(t, d, "Ion", 1)

	if _, err := d.BorrowBook(ctx, first, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	already, err := d.BorrowBook(ctx, second, bookID)
	if err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	if already {
		t.Fatalf("unavailable book must not report already borrowed")
	}
	borrows, err := d.ListBorrowsByUser(ctx, second)
	if err != nil {
		t.Fatalf("ListBorrowsByUser: %v", err)
	}
	if len(borrows) != 0 {
		t.Fatalf("declined borrow must not create a row")
	}
}

// TestBorrowMissingBook surfaces ErrBookNotFound.
func TestBorrowMissingBook(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")

	if _, err := d.BorrowBook(ctx, userID, 9999); err != ErrBookNotFound {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

// TestCanBeBorrowedDerivation flips availability with borrows and returns.
func TestCanBeBorrowedDerivation(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")
	bookID := seedBook(t, d, "Ion", 1)

	books, err := d.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 1 || !books[0].CanBeBorrowed {
		t.Fatalf("fresh book should be borrowable: %+v", books)
	}

	if _, err := d.BorrowBook(ctx, userID, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	books, err = d.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if books[0].CanBeBorrowed {
		t.Fatalf("borrowed-out book should not be borrowable")
	}

	borrows, _ := d.ListBorrowsByUser(ctx, userID)
	if err := d.ReturnBook(ctx, borrows[0].BorrowID); err != nil {
		t.Fatalf("ReturnBook: %v", err)
	}
	books, err = d.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if !books[0].CanBeBorrowed {
		t.Fatalf("returned book should be borrowable again")
	}
}

// TestLengthenAndEndBorrow checks deadline arithmetic and the forced-overdue
// path.
func TestLengthenAndEndBorrow(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")
	bookID := seedBook(t, d, "Ion", 1)

	if _, err := d.BorrowBook(ctx, userID, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	borrows, _ := d.ListBorrowsByUser(ctx, userID)
	before := borrows[0].ValidUntil

	if err := d.LengthenBorrow(ctx, borrows[0].BorrowID, 7); err != nil {
		t.Fatalf("LengthenBorrow: %v", err)
	}
	borrows, _ = d.ListBorrowsByUser(ctx, userID)
	if got := borrows[0].ValidUntil - before; got != 7*86400 {
		t.Fatalf("expected deadline +7d, got +%ds", got)
	}

	if err := d.EndBorrow(ctx, borrows[0].BorrowID); err != nil {
		t.Fatalf("EndBorrow: %v", err)
	}
	borrows, _ = d.ListBorrowsByUser(ctx, userID)
	if borrows[0].ValidUntil > time.Now().Unix() {
		t.Fatalf("ended borrow should be due immediately")
	}

	if err := d.LengthenBorrow(ctx, 9999, 7); err != ErrBorrowNotFound {
		t.Fatalf("expected ErrBorrowNotFound, got %v", err)
	}
	if err := d.EndBorrow(ctx, 9999); err != ErrBorrowNotFound {
		t.Fatalf("expected ErrBorrowNotFound, got %v", err)
	}
}

// TestSetChaptersRead persists progress and rejects missing borrows.
func TestSetChaptersRead(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")
	bookID := seedBook(t, d, "Ion", 1)

	if _, err := d.BorrowBook(ctx, userID, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	borrows, _ := d.ListBorrowsByUser(ctx, userID)
	if err := d.SetChaptersRead(ctx, borrows[0].BorrowID, 5); err != nil {
		t.Fatalf("SetChaptersRead: %v", err)
	}
	borrows, _ = d.ListBorrowsByUser(ctx, userID)
	if borrows[0].ChaptersRead != 5 {
		t.Fatalf("expected 5 chapters read, got %d", borrows[0].ChaptersRead)
	}
	if err := d.SetChaptersRead(ctx, 9999, 1); err != ErrBorrowNotFound {
		t.Fatalf("expected ErrBorrowNotFound, got %v", err)
	}
}

// TestDeleteBookStillBorrowed refuses deletion while a borrow references the
// book and leaves the row untouched.
func TestDeleteBookStillBorrowed(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")
	bookID := seedBook(t, d, "Ion", 1)

	if _, err := d.BorrowBook(ctx, userID, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	res, err := d.DeleteBook(ctx, bookID)
	if err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if res != BookStillBorrowed {
		t.Fatalf("expected BookStillBorrowed, got %v", res)
	}
	books, _ := d.ListBooks(ctx)
	if len(books) != 1 {
		t.Fatalf("refused delete must not remove the book")
	}

	borrows, _ := d.ListBorrowsByUser(ctx, userID)
	if err := d.ReturnBook(ctx, borrows[0].BorrowID); err != nil {
		t.Fatalf("ReturnBook: %v", err)
	}
	res, err = d.DeleteBook(ctx, bookID)
	if err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if res != BookDeleted {
		t.Fatalf("expected BookDeleted, got %v", res)
	}
	books, _ = d.ListBooks(ctx)
	if len(books) != 0 {
		t.Fatalf("book should be gone")
	}
}

// TestDeleteUserStillHasBorrows refuses deletion while the user holds books.
func TestDeleteUserStillHasBorrows(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")
	bookID := seedBook(t, d, "Ion", 1)

	if _, err := d.BorrowBook(ctx, userID, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	res, err := d.DeleteUser(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if res != UserStillHasBorrows {
		t.Fatalf("expected UserStillHasBorrows, got %v", res)
	}
	if _, ok, _ := d.GetUserByID(ctx, userID); !ok {
		t.Fatalf("refused delete must not remove the user")
	}

	borrows, _ := d.ListBorrowsByUser(ctx, userID)
	if err := d.ReturnBook(ctx, borrows[0].BorrowID); err != nil {
		t.Fatalf("ReturnBook: %v", err)
	}
	res, err = d.DeleteUser(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if res != UserDeleted {
		t.Fatalf("expected UserDeleted, got %v", res)
	}
	if _, ok, _ := d.GetUserByID(ctx, userID); ok {
		t.Fatalf("user should be gone")
	}
}

// TestPromoteUserIdempotent promotes and re-promotes without error.
func TestPromoteUserIdempotent(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	userID := seedUser(t, d, "a@b.c")

	kind, _, _ := d.GetUserKind(ctx, userID)
	if kind != 1 {
		t.Fatalf("new users start as kind 1, got %d", kind)
	}
	if err := d.PromoteUser(ctx, userID); err != nil {
		t.Fatalf("PromoteUser: %v", err)
	}
	if err := d.PromoteUser(ctx, userID); err != nil {
		t.Fatalf("second PromoteUser: %v", err)
	}
	kind, _, _ = d.GetUserKind(ctx, userID)
	if kind != 2 {
		t.Fatalf("expected kind 2, got %d", kind)
	}
}

// TestListUsersWithBorrowCount counts only active borrows.
func TestListUsersWithBorrowCount(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	first := seedUser(t, d, "a@b.c")
	seedUser(t, d, "x@y.z")
	bookID := seedBook(t, d, "Ion", 1)

	if _, err := d.BorrowBook(ctx, first, bookID); err != nil {
		t.Fatalf("BorrowBook: %v", err)
	}
	users, err := d.ListUsersWithBorrowCount(ctx)
	if err != nil {
		t.Fatalf("ListUsersWithBorrowCount: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		want := int64(0)
		if u.ID == first {
			want = 1
		}
		if u.BorrowedBookCount != want {
			t.Fatalf("user %d: expected %d borrows, got %d", u.ID, want, u.BorrowedBookCount)
		}
	}
}

// TestInsertBookMissingAuthor maps the FK violation to ErrAuthorNotFound.
func TestInsertBookMissingAuthor(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	if _, err := d.InsertBook(ctx, "Ion", 9999, 200, "pub", 1, ""); err != ErrAuthorNotFound {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

// TestUpdateBook overwrites the mutable fields.
func TestUpdateBook(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	bookID := seedBook(t, d, "Ion", 1)

	books, _ := d.ListBooks(ctx)
	authorID := books[0].Author.ID
	if err := d.UpdateBook(ctx, bookID, "Ion, ed. 2", authorID, 300, "other pub", 4, "new syn"); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	books, _ = d.ListBooks(ctx)
	b := books[0]
	if b.Title != "Ion, ed. 2" || b.PublishDate != 300 || b.Publisher != "other pub" || b.Count != 4 || b.Synopsis != "new syn" {
		t.Fatalf("unexpected book after update: %+v", b)
	}
}
