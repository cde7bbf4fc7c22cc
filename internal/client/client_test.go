package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/RealKC/bd-homework/internal/auth"
	"github.com/RealKC/bd-homework/internal/db"
	"github.com/RealKC/bd-homework/internal/httpapi"
	"github.com/RealKC/bd-homework/internal/schema"
)

func newTestBackend(t *testing.T) (*Client, *db.DB) {
	t.Helper()
	d, err := db.Open(context.Background(), t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	srv := &httpapi.Server{
		DB:     d,
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})),
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New(Options{Addr: ts.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, d
}

// TestClientLoginErrors surfaces the server's status and message via
// StatusError.
func TestClientLoginErrors(t *testing.T) {
	c, _ := newTestBackend(t)

	_, err := c.Login("nobody@bd.ro", "pw")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 404 {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if se.Error() == "" {
		t.Fatalf("expected an error message")
	}
}

// TestClientRoundTrip creates an account, borrows, and reads back the borrow.
func TestClientRoundTrip(t *testing.T) {
	c, d := newTestBackend(t)
	ctx := context.Background()

	reply, err := c.CreateAccount("Ana", "ana@bd.ro", "pw")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	cookie := schema.Cookie{ID: reply.ID, Password: "pw"}

	authorID, err := d.CreateAuthor(ctx, "A", 0, nil, "")
	if err != nil {
		t.Fatalf("CreateAuthor: %v", err)
	}
	if _, err := d.InsertBook(ctx, "Ion", authorID, 0, "", 1, ""); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}

	books, err := c.Books()
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}

	already, err := c.Borrow(cookie, books[0].BookID)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if already {
		t.Fatalf("first borrow flagged as duplicate")
	}

	borrowed, err := c.BorrowedBy(cookie, cookie.ID)
	if err != nil {
		t.Fatalf("BorrowedBy: %v", err)
	}
	if len(borrowed) != 1 || borrowed[0].BookID != books[0].BookID {
		t.Fatalf("unexpected borrow list: %+v", borrowed)
	}

	if err := c.UpdateChaptersRead(cookie, borrowed[0].BorrowID, 3); err != nil {
		t.Fatalf("UpdateChaptersRead: %v", err)
	}
	if err := c.ReturnBook(cookie, borrowed[0].BorrowID); err != nil {
		t.Fatalf("ReturnBook: %v", err)
	}
	borrowed, err = c.BorrowedBy(cookie, cookie.ID)
	if err != nil {
		t.Fatalf("BorrowedBy: %v", err)
	}
	if len(borrowed) != 0 {
		t.Fatalf("expected empty borrow list after return")
	}
}

// TestClientDeleteUserReply decodes the bare-string reply variants.
func TestClientDeleteUserReply(t *testing.T) {
	c, d := newTestBackend(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("secret", auth.DefaultArgon2Params())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	libID, err := d.CreateLibrarian(ctx, "Lib", "lib@bd.ro", hash)
	if err != nil {
		t.Fatalf("CreateLibrarian: %v", err)
	}
	lib := schema.Cookie{ID: libID, Password: "secret"}

	reply, err := c.DeleteUser(lib, libID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if reply != schema.DeleteUserCannotDeleteSelf {
		t.Fatalf("expected CannotDeleteSelf, got %q", reply)
	}

	user, err := c.CreateAccount("Ana", "ana@bd.ro", "pw")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	reply, err = c.DeleteUser(lib, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if reply != schema.DeleteUserOk {
		t.Fatalf("expected Ok, got %q", reply)
	}
}
