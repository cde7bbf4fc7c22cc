// Package client is the typed HTTP client for the library server API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RealKC/bd-homework/internal/schema"
)

type Client struct {
	baseURL *url.URL
	hc      *http.Client
}

type Options struct {
	Addr      string
	Timeout   time.Duration
	UserAgent string
}

func New(opt Options) (*Client, error) {
	if opt.Addr == "" {
		return nil, errors.New("addr is required")
	}
	u, err := url.Parse(opt.Addr)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		return nil, errors.New("invalid addr")
	}

	timeout := opt.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	return &Client{baseURL: u, hc: &http.Client{Timeout: timeout}}, nil
}

// StatusError carries the HTTP status alongside the server's error message so
// callers can branch on outcomes like "unknown email" vs "wrong password".
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

func (c *Client) Login(email, password string) (schema.LoginReply, error) {
	var resp schema.LoginReply
	err := c.doJSON("POST", "/auth/login", schema.Login{Email: email, Password: password}, &resp)
	return resp, err
}

func (c *Client) CreateAccount(name, email, password string) (schema.LoginReply, error) {
	var resp schema.LoginReply
	err := c.doJSON("POST", "/auth/create-account", schema.CreateAccount{Name: name, Email: email, Password: password}, &resp)
	return resp, err
}

func (c *Client) AllUsers(cookie schema.Cookie) ([]schema.User, error) {
	var resp []schema.User
	if err := c.doJSON("POST", "/auth/all-users", schema.GetAllUsersRequest{Cookie: cookie}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) PromoteUser(cookie schema.Cookie, userID int64) error {
	return c.doJSON("POST", "/auth/promote-user", schema.PromoteUserRequest{UserToBePromoted: userID, Cookie: cookie}, nil)
}

func (c *Client) DeleteUser(cookie schema.Cookie, userID int64) (schema.DeleteUserReply, error) {
	var resp schema.DeleteUserReply
	err := c.doJSON("POST", "/auth/delete-user", schema.DeleteUserRequest{UserToBeDeleted: userID, Cookie: cookie}, &resp)
	return resp, err
}

func (c *Client) Books() ([]schema.Book, error) {
	var resp []schema.Book
	if err := c.doJSON("GET", "/books", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Authors() ([]schema.Author, error) {
	var resp []schema.Author
	if err := c.doJSON("GET", "/authors", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ChangeBookDetails(req schema.ChangeBookDetailsRequest) error {
	return c.doJSON("POST", "/change-book-details", req, nil)
}

func (c *Client) ChangeAuthorDetails(req schema.ChangeAuthorDetailsRequest) error {
	return c.doJSON("POST", "/change-author-details", req, nil)
}

func (c *Client) DeleteBook(cookie schema.Cookie, bookID int64) error {
	return c.doJSON("POST", "/delete-book/"+itoa(bookID), cookie, nil)
}

func (c *Client) Borrow(cookie schema.Cookie, bookID int64) (bool, error) {
	var resp schema.BorrowReply
	if err := c.doJSON("POST", "/borrow", schema.BorrowRequest{Cookie: cookie, BookID: bookID}, &resp); err != nil {
		return false, err
	}
	return resp.AlreadyBorrowed, nil
}

func (c *Client) BorrowedBy(cookie schema.Cookie, userID int64) ([]schema.BorrowedBook, error) {
	var resp []schema.BorrowedBook
	if err := c.doJSON("POST", "/borrowed-by/"+itoa(userID), schema.BorrowedByRequest{Cookie: cookie}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Borrows(cookie schema.Cookie) ([]schema.Borrow, error) {
	var resp []schema.Borrow
	if err := c.doJSON("POST", "/borrows", schema.BorrowsRequest{Cookie: cookie}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) LengthenBorrow(cookie schema.Cookie, borrowID, days int64) error {
	return c.doJSON("POST", "/lengthen-borrow/"+itoa(borrowID)+"?days="+itoa(days), cookie, nil)
}

func (c *Client) EndBorrow(cookie schema.Cookie, borrowID int64) error {
	return c.doJSON("POST", "/end-borrow/"+itoa(borrowID), cookie, nil)
}

func (c *Client) ReturnBook(cookie schema.Cookie, borrowID int64) error {
	return c.doJSON("POST", "/return-book/"+itoa(borrowID), cookie, nil)
}

func (c *Client) UpdateChaptersRead(cookie schema.Cookie, borrowID, value int64) error {
	return c.doJSON("POST", "/update-borrow-chapters-read/"+itoa(borrowID)+"?value="+itoa(value), cookie, nil)
}

func (c *Client) doJSON(method, path string, body any, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	u := c.baseURL.ResolveReference(ref)
	req, err := http.NewRequest(method, u.String(), buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er schema.ErrorReply
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return &StatusError{StatusCode: resp.StatusCode, Message: er.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
