// Package schema defines the wire types shared by the server and the client.
package schema

// User kinds as stored in the users.kind column and returned by /auth routes.
const (
	NormalUser int64 = 1
	Librarian  int64 = 2
)

// Cookie is the client-held credential pair resubmitted on privileged calls.
// It is not a server-side session: the server re-checks the user's role on
// every call that needs it.
type Cookie struct {
	ID       int64  `json:"id"`
	Password string `json:"password"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginReply struct {
	ID   int64 `json:"id"`
	Kind int64 `json:"kind"`
}

type Author struct {
	AuthorID    int64  `json:"author_id"`
	Name        string `json:"name"`
	DateOfBirth int64  `json:"date_of_birth"`
	DateOfDeath *int64 `json:"date_of_death"`
	Description string `json:"description"`
}

type Book struct {
	BookID        int64  `json:"book_id"`
	Title         string `json:"title"`
	Author        Author `json:"author"`
	PublishDate   int64  `json:"publish_date"`
	Publisher     string `json:"publisher"`
	Count         int64  `json:"count"`
	Synopsis      string `json:"synopsis"`
	CanBeBorrowed bool   `json:"can_be_borrowed"`
}

// ChangeBookDetailsRequest creates a book when BookID is nil and updates the
// existing row otherwise.
type ChangeBookDetailsRequest struct {
	BookID      *int64 `json:"book_id"`
	Title       string `json:"title"`
	AuthorID    int64  `json:"author_id"`
	PublishDate int64  `json:"publish_date"`
	Publisher   string `json:"publisher"`
	Count       int64  `json:"count"`
	Synopsis    string `json:"synopsis"`
	Cookie      Cookie `json:"cookie"`
}

// ChangeAuthorDetailsRequest is create-only: AuthorID must be nil.
type ChangeAuthorDetailsRequest struct {
	AuthorID    *int64 `json:"author_id"`
	Name        string `json:"name"`
	DateOfBirth int64  `json:"date_of_birth"`
	DateOfDeath *int64 `json:"date_of_death"`
	Description string `json:"description"`
	Cookie      Cookie `json:"cookie"`
}

type BorrowRequest struct {
	Cookie Cookie `json:"cookie"`
	BookID int64  `json:"book_id"`
}

type BorrowReply struct {
	AlreadyBorrowed bool `json:"already_borrowed"`
}

// BorrowedBook is one entry of a user's own borrow list.
type BorrowedBook struct {
	BorrowID     int64 `json:"borrow_id"`
	BookID       int64 `json:"book_id"`
	ValidUntil   int64 `json:"valid_until"`
	ChaptersRead int64 `json:"chapters_read"`
}

type BorrowedByRequest struct {
	Cookie Cookie `json:"cookie"`
}

// Borrow is one entry of the system-wide borrow list shown to librarians.
type Borrow struct {
	BorrowID   int64 `json:"borrow_id"`
	BookID     int64 `json:"book_id"`
	UserID     int64 `json:"user_id"`
	ValidUntil int64 `json:"valid_until"`
}

type BorrowsRequest struct {
	Cookie Cookie `json:"cookie"`
}

type GetAllUsersRequest struct {
	Cookie Cookie `json:"cookie"`
}

type User struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Kind              int64  `json:"kind"`
	BorrowedBookCount int64  `json:"borrowed_book_count"`
}

type PromoteUserRequest struct {
	UserToBePromoted int64  `json:"user_to_be_promoted"`
	Cookie           Cookie `json:"cookie"`
}

type DeleteUserRequest struct {
	UserToBeDeleted int64  `json:"user_to_be_deleted"`
	Cookie          Cookie `json:"cookie"`
}

// DeleteUserReply is serialized as a bare JSON string so expected business
// outcomes are reply variants, not error statuses.
type DeleteUserReply string

const (
	DeleteUserOk               DeleteUserReply = "Ok"
	DeleteUserStillHadBooks    DeleteUserReply = "UsersStillHadBooks"
	DeleteUserCannotDeleteSelf DeleteUserReply = "CannotDeleteSelf"
)

type CookieRequest struct {
	Cookie Cookie `json:"cookie"`
}

type ErrorReply struct {
	Error string `json:"error"`
}
