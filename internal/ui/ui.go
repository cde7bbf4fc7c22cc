// Package ui implements the interactive library TUI using Bubble Tea.
package ui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RealKC/bd-homework/internal/client"
	"github.com/RealKC/bd-homework/internal/schema"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// state represents the current screen in the library UI.
type state int

const (
	stateLogin state = iota
	stateCreateAccount
	stateBooks
	stateMyBorrows
	stateChapters
	stateEditBook
	stateEditAuthor
	stateUsers
	stateAllBorrows
)

// Model holds all UI state for the library TUI.
type Model struct {
	client *client.Client
	addr   string

	st   state
	err  string
	info string

	cookie schema.Cookie
	kind   int64

	loginEmail textinput.Model
	loginPass  textinput.Model

	caName  textinput.Model
	caEmail textinput.Model
	caPass  textinput.Model

	books   []schema.Book
	bookLst list.Model

	borrowed  []schema.BorrowedBook
	borrowLst list.Model

	chapters textinput.Model

	// editedBook is nil when creating a new book.
	editedBook  *int64
	authors     []schema.Author
	ebTitle     textinput.Model
	ebAuthorID  textinput.Model
	ebPublished textinput.Model
	ebPublisher textinput.Model
	ebCount     textinput.Model
	ebSynopsis  textinput.Model

	eaName textinput.Model
	eaBorn textinput.Model
	eaDied textinput.Model
	eaDesc textinput.Model

	users   []schema.User
	userLst list.Model

	allBorrows []schema.Borrow
	allLst     list.Model
}

// New constructs a UI model and initializes inputs and lists.
func New(c *client.Client, addr string) Model {
	m := Model{client: c, st: stateLogin, addr: redactAddr(addr)}

	m.loginEmail = textinput.New()
	m.loginEmail.Placeholder = "you@example.com"
	m.loginEmail.Prompt = "Email: "
	m.loginEmail.Focus()
	m.loginPass = textinput.New()
	m.loginPass.Placeholder = "password"
	m.loginPass.EchoMode = textinput.EchoPassword
	m.loginPass.Prompt = "Password: "

	m.caName = textinput.New()
	m.caName.Placeholder = "name"
	m.caName.Prompt = "Name: "
	m.caEmail = textinput.New()
	m.caEmail.Placeholder = "you@example.com"
	m.caEmail.Prompt = "Email: "
	m.caPass = textinput.New()
	m.caPass.Placeholder = "password"
	m.caPass.EchoMode = textinput.EchoPassword
	m.caPass.Prompt = "Password: "

	m.bookLst = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.bookLst.Title = "Books"
	m.borrowLst = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.borrowLst.Title = "My borrows"
	m.userLst = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.userLst.Title = "Users"
	m.allLst = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.allLst.Title = "All borrows"

	m.chapters = textinput.New()
	m.chapters.Placeholder = "0"
	m.chapters.Prompt = "Chapters read: "

	m.ebTitle = textinput.New()
	m.ebTitle.Placeholder = "title"
	m.ebTitle.Prompt = "Title: "
	m.ebAuthorID = textinput.New()
	m.ebAuthorID.Placeholder = "author id"
	m.ebAuthorID.Prompt = "Author id: "
	m.ebPublished = textinput.New()
	m.ebPublished.Placeholder = "2006-01-02"
	m.ebPublished.Prompt = "Published: "
	m.ebPublisher = textinput.New()
	m.ebPublisher.Placeholder = "publisher"
	m.ebPublisher.Prompt = "Publisher: "
	m.ebCount = textinput.New()
	m.ebCount.Placeholder = "1"
	m.ebCount.Prompt = "Count: "
	m.ebSynopsis = textinput.New()
	m.ebSynopsis.Placeholder = "synopsis"
	m.ebSynopsis.Prompt = "Synopsis: "

	m.eaName = textinput.New()
	m.eaName.Placeholder = "name"
	m.eaName.Prompt = "Name: "
	m.eaBorn = textinput.New()
	m.eaBorn.Placeholder = "1900-01-01"
	m.eaBorn.Prompt = "Born: "
	m.eaDied = textinput.New()
	m.eaDied.Placeholder = "optional, 1990-01-01"
	m.eaDied.Prompt = "Died: "
	m.eaDesc = textinput.New()
	m.eaDesc.Placeholder = "description"
	m.eaDesc.Prompt = "Description: "

	return m
}

// Init returns the initial command for the Bubble Tea runtime.
func (m Model) Init() tea.Cmd {
	return nil
}

type errMsg string
type infoMsg string
type loginMsg schema.LoginReply
type booksMsg []schema.Book
type authorsMsg []schema.Author
type borrowedMsg []schema.BorrowedBook
type usersMsg []schema.User
type allBorrowsMsg []schema.Borrow
type okMsg struct{}

// Update routes messages based on UI state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bookLst.SetSize(msg.Width-4, msg.Height-8)
		m.borrowLst.SetSize(msg.Width-4, msg.Height-8)
		m.userLst.SetSize(msg.Width-4, msg.Height-8)
		m.allLst.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	case errMsg:
		m.err = string(msg)
		return m, nil
	case infoMsg:
		m.info = string(msg)
		m.err = ""
		return m, nil
	case loginMsg:
		m.kind = msg.Kind
		m.cookie.ID = msg.ID
		m.err = ""
		m.info = ""
		m.st = stateBooks
		return m, refreshBooksCmd(m.client)
	case booksMsg:
		m.books = []schema.Book(msg)
		items := make([]list.Item, 0, len(m.books))
		for _, b := range m.books {
			items = append(items, bookItem{b})
		}
		m.bookLst.SetItems(items)
		m.err = ""
		return m, nil
	case authorsMsg:
		m.authors = []schema.Author(msg)
		m.err = ""
		return m, nil
	case borrowedMsg:
		m.borrowed = []schema.BorrowedBook(msg)
		items := make([]list.Item, 0, len(m.borrowed))
		now := time.Now().Unix()
		for _, b := range m.borrowed {
			items = append(items, borrowedItem{b, m.bookTitle(b.BookID), now})
		}
		m.borrowLst.SetItems(items)
		m.err = ""
		return m, nil
	case usersMsg:
		m.users = []schema.User(msg)
		items := make([]list.Item, 0, len(m.users))
		for _, u := range m.users {
			items = append(items, userItem(u))
		}
		m.userLst.SetItems(items)
		m.err = ""
		return m, nil
	case allBorrowsMsg:
		m.allBorrows = []schema.Borrow(msg)
		items := make([]list.Item, 0, len(m.allBorrows))
		now := time.Now().Unix()
		for _, b := range m.allBorrows {
			items = append(items, allBorrowItem{b, m.bookTitle(b.BookID), m.userName(b.UserID), now})
		}
		m.allLst.SetItems(items)
		m.err = ""
		return m, nil
	case okMsg:
		m.err = ""
		return m, nil
	}

	switch m.st {
	case stateLogin:
		return m.updateLogin(msg)
	case stateCreateAccount:
		return m.updateCreateAccount(msg)
	case stateBooks:
		return m.updateBooks(msg)
	case stateMyBorrows:
		return m.updateMyBorrows(msg)
	case stateChapters:
		return m.updateChapters(msg)
	case stateEditBook:
		return m.updateEditBook(msg)
	case stateEditAuthor:
		return m.updateEditAuthor(msg)
	case stateUsers:
		return m.updateUsers(msg)
	case stateAllBorrows:
		return m.updateAllBorrows(msg)
	default:
		return m, nil
	}
}

// View renders the current screen as a string.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Biblioteca")
	if m.addr != "" {
		b.WriteString(" (" + m.addr + ")")
	}
	b.WriteString("\n\n")

	switch m.st {
	case stateLogin:
		b.WriteString("Login\n")
		b.WriteString(m.loginEmail.View() + "\n")
		b.WriteString(m.loginPass.View() + "\n\n")
		b.WriteString("Enter=login  alt+n=create account  q=quit\n")
	case stateCreateAccount:
		b.WriteString("Create account\n")
		b.WriteString(m.caName.View() + "\n")
		b.WriteString(m.caEmail.View() + "\n")
		b.WriteString(m.caPass.View() + "\n\n")
		b.WriteString("Enter=create  esc=back\n")
	case stateBooks:
		b.WriteString(m.bookLst.View())
		b.WriteString("\n")
		if m.kind == schema.Librarian {
			b.WriteString("Keys: b=borrow m=my-borrows n=new-book e=edit x=delete a=new-author u=users o=borrows r=refresh q=quit\n")
		} else {
			b.WriteString("Keys: b=borrow m=my-borrows r=refresh q=quit\n")
		}
	case stateMyBorrows:
		b.WriteString(m.borrowLst.View())
		b.WriteString("\n")
		b.WriteString("Keys: t=return c=chapters-read r=refresh esc=back\n")
	case stateChapters:
		if it, ok := m.selectedBorrowed(); ok {
			b.WriteString("Update progress for: " + m.bookTitle(it.BookID) + "\n\n")
		}
		b.WriteString(m.chapters.View())
		b.WriteString("\n\nEnter=save  esc=back\n")
	case stateEditBook:
		if m.editedBook == nil {
			b.WriteString("New book\n\n")
		} else {
			b.WriteString("Edit book\n\n")
		}
		b.WriteString("Authors: " + m.authorChoices() + "\n\n")
		b.WriteString(m.ebTitle.View() + "\n")
		b.WriteString(m.ebAuthorID.View() + "\n")
		b.WriteString(m.ebPublished.View() + "\n")
		b.WriteString(m.ebPublisher.View() + "\n")
		b.WriteString(m.ebCount.View() + "\n")
		b.WriteString(m.ebSynopsis.View() + "\n\n")
		b.WriteString("Tab=next field  Enter=save  esc=back\n")
	case stateEditAuthor:
		b.WriteString("New author\n\n")
		b.WriteString(m.eaName.View() + "\n")
		b.WriteString(m.eaBorn.View() + "\n")
		b.WriteString(m.eaDied.View() + "\n")
		b.WriteString(m.eaDesc.View() + "\n\n")
		b.WriteString("Tab=next field  Enter=save  esc=back\n")
	case stateUsers:
		b.WriteString(m.userLst.View())
		b.WriteString("\n")
		b.WriteString("Keys: p=promote d=delete r=refresh esc=back\n")
	case stateAllBorrows:
		b.WriteString(m.allLst.View())
		b.WriteString("\n")
		b.WriteString("Keys: l=lengthen-7d e=end r=refresh esc=back\n")
	}

	if m.info != "" {
		b.WriteString("\n" + m.info + "\n")
	}
	if m.err != "" {
		b.WriteString("\nError: " + m.err + "\n")
	}

	return b.String()
}

type bookItem struct{ book schema.Book }

func (b bookItem) Title() string { return b.Book().Title }
func (b bookItem) Description() string {
	bk := b.Book()
	avail := "available"
	if !bk.CanBeBorrowed {
		avail = "all copies out"
	}
	return fmt.Sprintf("%s, %s, %d copies, %s", bk.Author.Name, bk.Publisher, bk.Count, avail)
}
func (b bookItem) FilterValue() string { return b.Book().Title }
func (b bookItem) Book() schema.Book   { return b.book }

type borrowedItem struct {
	schema.BorrowedBook
	bookTitle string
	now       int64
}

func (b borrowedItem) Title() string { return b.bookTitle }
func (b borrowedItem) Description() string {
	return fmt.Sprintf("%s, %d chapters read", DueLabel(b.ValidUntil, b.now), b.ChaptersRead)
}
func (b borrowedItem) FilterValue() string { return b.bookTitle }

type userItem schema.User

func (u userItem) Title() string { return schema.User(u).Name }
func (u userItem) Description() string {
	su := schema.User(u)
	role := "reader"
	if su.Kind == schema.Librarian {
		role = "librarian"
	}
	return fmt.Sprintf("%s, %s, %d books out", su.Email, role, su.BorrowedBookCount)
}
func (u userItem) FilterValue() string { return schema.User(u).Name }

type allBorrowItem struct {
	schema.Borrow
	bookTitle string
	userName  string
	now       int64
}

func (b allBorrowItem) Title() string { return b.bookTitle }
func (b allBorrowItem) Description() string {
	return fmt.Sprintf("%s, %s", b.userName, DueLabel(b.ValidUntil, b.now))
}
func (b allBorrowItem) FilterValue() string { return b.bookTitle }

// DueLabel renders a borrow deadline relative to now.
func DueLabel(validUntil, now int64) string {
	secs := validUntil - now
	if secs < 0 {
		days := (-secs + 86399) / 86400
		if days == 1 {
			return "overdue by 1 day"
		}
		return fmt.Sprintf("overdue by %d days", days)
	}
	days := secs / 86400
	switch days {
	case 0:
		return "due today"
	case 1:
		return "due in 1 day"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func (m *Model) bookTitle(bookID int64) string {
	for _, b := range m.books {
		if b.BookID == bookID {
			return b.Title
		}
	}
	return "book #" + strconv.FormatInt(bookID, 10)
}

func (m *Model) userName(userID int64) string {
	for _, u := range m.users {
		if u.ID == userID {
			return u.Name
		}
	}
	return "user #" + strconv.FormatInt(userID, 10)
}

func (m *Model) authorChoices() string {
	if len(m.authors) == 0 {
		return "none yet"
	}
	parts := make([]string, 0, len(m.authors))
	for _, a := range m.authors {
		parts = append(parts, fmt.Sprintf("%d=%s", a.AuthorID, a.Name))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) selectedBook() (schema.Book, bool) {
	if it, ok := m.bookLst.SelectedItem().(bookItem); ok {
		return it.Book(), true
	}
	return schema.Book{}, false
}

func (m *Model) selectedBorrowed() (schema.BorrowedBook, bool) {
	if it, ok := m.borrowLst.SelectedItem().(borrowedItem); ok {
		return it.BorrowedBook, true
	}
	return schema.BorrowedBook{}, false
}

func (m *Model) selectedUser() (schema.User, bool) {
	if it, ok := m.userLst.SelectedItem().(userItem); ok {
		return schema.User(it), true
	}
	return schema.User{}, false
}

func (m *Model) selectedAllBorrow() (schema.Borrow, bool) {
	if it, ok := m.allLst.SelectedItem().(allBorrowItem); ok {
		return it.Borrow, true
	}
	return schema.Borrow{}, false
}

func loginCmd(c *client.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		reply, err := c.Login(email, password)
		if err != nil {
			return errMsg(err.Error())
		}
		return loginMsg(reply)
	}
}

func createAccountCmd(c *client.Client, name, email, password string) tea.Cmd {
	return func() tea.Msg {
		reply, err := c.CreateAccount(name, email, password)
		if err != nil {
			return errMsg(err.Error())
		}
		return loginMsg(reply)
	}
}

func refreshBooksCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		books, err := c.Books()
		if err != nil {
			return errMsg(err.Error())
		}
		return booksMsg(books)
	}
}

func refreshAuthorsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		authors, err := c.Authors()
		if err != nil {
			return errMsg(err.Error())
		}
		return authorsMsg(authors)
	}
}

func borrowCmd(c *client.Client, cookie schema.Cookie, bookID int64) tea.Cmd {
	return func() tea.Msg {
		already, err := c.Borrow(cookie, bookID)
		if err != nil {
			return errMsg(err.Error())
		}
		if already {
			return infoMsg("You already borrowed this book.")
		}
		return infoMsg("Borrowed.")
	}
}

func refreshBorrowedCmd(c *client.Client, cookie schema.Cookie) tea.Cmd {
	return func() tea.Msg {
		borrows, err := c.BorrowedBy(cookie, cookie.ID)
		if err != nil {
			return errMsg(err.Error())
		}
		return borrowedMsg(borrows)
	}
}

func returnBookCmd(c *client.Client, cookie schema.Cookie, borrowID int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.ReturnBook(cookie, borrowID); err != nil {
			return errMsg(err.Error())
		}
		return okMsg{}
	}
}

func chaptersCmd(c *client.Client, cookie schema.Cookie, borrowID, value int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.UpdateChaptersRead(cookie, borrowID, value); err != nil {
			return errMsg(err.Error())
		}
		return okMsg{}
	}
}

func deleteBookCmd(c *client.Client, cookie schema.Cookie, bookID int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.DeleteBook(cookie, bookID); err != nil {
			return errMsg(err.Error())
		}
		return okMsg{}
	}
}

func refreshUsersCmd(c *client.Client, cookie schema.Cookie) tea.Cmd {
	return func() tea.Msg {
		users, err := c.AllUsers(cookie)
		if err != nil {
			return errMsg(err.Error())
		}
		return usersMsg(users)
	}
}

func promoteUserCmd(c *client.Client, cookie schema.Cookie, userID int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.PromoteUser(cookie, userID); err != nil {
			return errMsg(err.Error())
		}
		return okMsg{}
	}
}

func deleteUserCmd(c *client.Client, cookie schema.Cookie, userID int64) tea.Cmd {
	return func() tea.Msg {
		reply, err := c.DeleteUser(cookie, userID)
		if err != nil {
			return errMsg(err.Error())
		}
		switch reply {
		case schema.DeleteUserStillHadBooks:
			return infoMsg("User still has borrowed books and was not deleted.")
		case schema.DeleteUserCannotDeleteSelf:
			return infoMsg("You cannot delete your own account.")
		default:
			return infoMsg("User deleted.")
		}
	}
}

func refreshAllBorrowsCmd(c *client.Client, cookie schema.Cookie) tea.Cmd {
	return func() tea.Msg {
		borrows, err := c.Borrows(cookie)
		if err != nil {
			return errMsg(err.Error())
		}
		return allBorrowsMsg(borrows)
	}
}

func lengthenCmd(c *client.Client, cookie schema.Cookie, borrowID, days int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.LengthenBorrow(cookie, borrowID, days); err != nil {
			return errMsg(err.Error())
		}
		return okMsg{}
	}
}

func endBorrowCmd(c *client.Client, cookie schema.Cookie, borrowID int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.EndBorrow(cookie, borrowID); err != nil {
			return errMsg(err.Error())
		}
		return okMsg{}
	}
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "alt+n":
			m.st = stateCreateAccount
			m.err = ""
			m.caName.SetValue("")
			m.caEmail.SetValue("")
			m.caPass.SetValue("")
			m.caName.Focus()
			return m, nil
		case "enter":
			email := strings.TrimSpace(m.loginEmail.Value())
			pw := m.loginPass.Value()
			m.cookie.Password = pw
			return m, loginCmd(m.client, email, pw)
		case "tab":
			if m.loginEmail.Focused() {
				m.loginEmail.Blur()
				m.loginPass.Focus()
			} else {
				m.loginPass.Blur()
				m.loginEmail.Focus()
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	if m.loginEmail.Focused() {
		m.loginEmail, cmd = m.loginEmail.Update(msg)
	} else {
		m.loginPass, cmd = m.loginPass.Update(msg)
	}
	return m, cmd
}

func (m Model) updateCreateAccount(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateLogin
			m.err = ""
			return m, nil
		case "enter":
			pw := m.caPass.Value()
			m.cookie.Password = pw
			return m, createAccountCmd(m.client,
				strings.TrimSpace(m.caName.Value()),
				strings.TrimSpace(m.caEmail.Value()),
				pw)
		}
	}

	var cmd tea.Cmd
	if m.caName.Focused() {
		m.caName, cmd = m.caName.Update(msg)
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "tab" {
			m.caName.Blur()
			m.caEmail.Focus()
		}
		return m, cmd
	}
	if m.caEmail.Focused() {
		m.caEmail, cmd = m.caEmail.Update(msg)
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "tab" {
			m.caEmail.Blur()
			m.caPass.Focus()
		}
		return m, cmd
	}
	m.caPass, cmd = m.caPass.Update(msg)
	return m, cmd
}

func (m Model) updateBooks(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.bookLst, cmd = m.bookLst.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.info = ""
			return m, refreshBooksCmd(m.client)
		case "b":
			bk, ok := m.selectedBook()
			if !ok {
				return m, nil
			}
			return m, tea.Batch(borrowCmd(m.client, m.cookie, bk.BookID), refreshBooksCmd(m.client))
		case "m":
			m.st = stateMyBorrows
			m.info = ""
			return m, refreshBorrowedCmd(m.client, m.cookie)
		}
		if m.kind != schema.Librarian {
			return m, cmd
		}
		switch k.String() {
		case "n":
			m.st = stateEditBook
			m.editedBook = nil
			m.info = ""
			m.ebTitle.SetValue("")
			m.ebAuthorID.SetValue("")
			m.ebPublished.SetValue("")
			m.ebPublisher.SetValue("")
			m.ebCount.SetValue("")
			m.ebSynopsis.SetValue("")
			m.ebTitle.Focus()
			return m, refreshAuthorsCmd(m.client)
		case "e":
			bk, ok := m.selectedBook()
			if !ok {
				return m, nil
			}
			m.st = stateEditBook
			id := bk.BookID
			m.editedBook = &id
			m.info = ""
			m.ebTitle.SetValue(bk.Title)
			m.ebAuthorID.SetValue(strconv.FormatInt(bk.Author.AuthorID, 10))
			m.ebPublished.SetValue(time.Unix(bk.PublishDate, 0).UTC().Format("2006-01-02"))
			m.ebPublisher.SetValue(bk.Publisher)
			m.ebCount.SetValue(strconv.FormatInt(bk.Count, 10))
			m.ebSynopsis.SetValue(bk.Synopsis)
			m.ebTitle.Focus()
			return m, refreshAuthorsCmd(m.client)
		case "x":
			bk, ok := m.selectedBook()
			if !ok {
				return m, nil
			}
			return m, tea.Batch(deleteBookCmd(m.client, m.cookie, bk.BookID), refreshBooksCmd(m.client))
		case "a":
			m.st = stateEditAuthor
			m.info = ""
			m.eaName.SetValue("")
			m.eaBorn.SetValue("")
			m.eaDied.SetValue("")
			m.eaDesc.SetValue("")
			m.eaName.Focus()
			return m, nil
		case "u":
			m.st = stateUsers
			m.info = ""
			return m, refreshUsersCmd(m.client, m.cookie)
		case "o":
			m.st = stateAllBorrows
			m.info = ""
			return m, tea.Batch(refreshUsersCmd(m.client, m.cookie), refreshAllBorrowsCmd(m.client, m.cookie))
		}
	}
	return m, cmd
}

func (m Model) updateMyBorrows(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.borrowLst, cmd = m.borrowLst.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateBooks
			return m, refreshBooksCmd(m.client)
		case "r":
			return m, refreshBorrowedCmd(m.client, m.cookie)
		case "t":
			b, ok := m.selectedBorrowed()
			if !ok {
				return m, nil
			}
			return m, tea.Batch(returnBookCmd(m.client, m.cookie, b.BorrowID), refreshBorrowedCmd(m.client, m.cookie))
		case "c":
			b, ok := m.selectedBorrowed()
			if !ok {
				return m, nil
			}
			m.st = stateChapters
			m.chapters.SetValue(strconv.FormatInt(b.ChaptersRead, 10))
			m.chapters.Focus()
			return m, nil
		}
	}
	return m, cmd
}

func (m Model) updateChapters(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateMyBorrows
			return m, nil
		case "enter":
			b, ok := m.selectedBorrowed()
			if !ok {
				m.st = stateMyBorrows
				return m, nil
			}
			value, err := strconv.ParseInt(strings.TrimSpace(m.chapters.Value()), 10, 64)
			if err != nil || value < 0 {
				m.err = "chapters read must be a non-negative number"
				return m, nil
			}
			m.st = stateMyBorrows
			return m, tea.Batch(chaptersCmd(m.client, m.cookie, b.BorrowID, value), refreshBorrowedCmd(m.client, m.cookie))
		}
	}
	var cmd tea.Cmd
	m.chapters, cmd = m.chapters.Update(msg)
	return m, cmd
}

func (m Model) updateEditBook(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateBooks
			return m, refreshBooksCmd(m.client)
		case "enter":
			req, err := m.bookRequest()
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.st = stateBooks
			cmd := func() tea.Msg {
				if err := m.client.ChangeBookDetails(req); err != nil {
					return errMsg(err.Error())
				}
				return okMsg{}
			}
			return m, tea.Batch(cmd, refreshBooksCmd(m.client))
		}
	}

	// Focus order: title -> author -> published -> publisher -> count -> synopsis
	inputs := []*textinput.Model{&m.ebTitle, &m.ebAuthorID, &m.ebPublished, &m.ebPublisher, &m.ebCount, &m.ebSynopsis}
	return m.updateFocusChain(msg, inputs)
}

func (m Model) updateEditAuthor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateBooks
			return m, refreshBooksCmd(m.client)
		case "enter":
			req, err := m.authorRequest()
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.st = stateBooks
			cmd := func() tea.Msg {
				if err := m.client.ChangeAuthorDetails(req); err != nil {
					return errMsg(err.Error())
				}
				return infoMsg("Author created.")
			}
			return m, tea.Batch(cmd, refreshBooksCmd(m.client))
		}
	}

	inputs := []*textinput.Model{&m.eaName, &m.eaBorn, &m.eaDied, &m.eaDesc}
	return m.updateFocusChain(msg, inputs)
}

// updateFocusChain advances focus through inputs on tab and forwards other
// messages to the focused input.
func (m Model) updateFocusChain(msg tea.Msg, inputs []*textinput.Model) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for i, in := range inputs {
		if !in.Focused() {
			continue
		}
		*in, cmd = in.Update(msg)
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "tab" {
			in.Blur()
			inputs[(i+1)%len(inputs)].Focus()
		}
		return m, cmd
	}
	inputs[0].Focus()
	return m, nil
}

func (m *Model) bookRequest() (schema.ChangeBookDetailsRequest, error) {
	var req schema.ChangeBookDetailsRequest
	req.BookID = m.editedBook
	req.Cookie = m.cookie
	req.Title = strings.TrimSpace(m.ebTitle.Value())
	req.Publisher = strings.TrimSpace(m.ebPublisher.Value())
	req.Synopsis = strings.TrimSpace(m.ebSynopsis.Value())

	authorID, err := strconv.ParseInt(strings.TrimSpace(m.ebAuthorID.Value()), 10, 64)
	if err != nil {
		return req, fmt.Errorf("author id must be a number")
	}
	req.AuthorID = authorID

	published, err := parseDate(m.ebPublished.Value())
	if err != nil {
		return req, err
	}
	req.PublishDate = published

	count, err := strconv.ParseInt(strings.TrimSpace(m.ebCount.Value()), 10, 64)
	if err != nil || count < 0 {
		return req, fmt.Errorf("count must be a non-negative number")
	}
	req.Count = count
	return req, nil
}

func (m *Model) authorRequest() (schema.ChangeAuthorDetailsRequest, error) {
	var req schema.ChangeAuthorDetailsRequest
	req.Cookie = m.cookie
	req.Name = strings.TrimSpace(m.eaName.Value())
	req.Description = strings.TrimSpace(m.eaDesc.Value())

	born, err := parseDate(m.eaBorn.Value())
	if err != nil {
		return req, err
	}
	req.DateOfBirth = born

	if died := strings.TrimSpace(m.eaDied.Value()); died != "" {
		d, err := parseDate(died)
		if err != nil {
			return req, err
		}
		req.DateOfDeath = &d
	}
	return req, nil
}

func parseDate(s string) (int64, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("dates must look like 2006-01-02")
	}
	return t.Unix(), nil
}

func (m Model) updateUsers(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.userLst, cmd = m.userLst.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateBooks
			m.info = ""
			return m, refreshBooksCmd(m.client)
		case "r":
			return m, refreshUsersCmd(m.client, m.cookie)
		case "p":
			u, ok := m.selectedUser()
			if !ok {
				return m, nil
			}
			return m, tea.Batch(promoteUserCmd(m.client, m.cookie, u.ID), refreshUsersCmd(m.client, m.cookie))
		case "d":
			u, ok := m.selectedUser()
			if !ok {
				return m, nil
			}
			return m, tea.Batch(deleteUserCmd(m.client, m.cookie, u.ID), refreshUsersCmd(m.client, m.cookie))
		}
	}
	return m, cmd
}

func (m Model) updateAllBorrows(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.allLst, cmd = m.allLst.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateBooks
			return m, refreshBooksCmd(m.client)
		case "r":
			return m, refreshAllBorrowsCmd(m.client, m.cookie)
		case "l":
			b, ok := m.selectedAllBorrow()
			if !ok {
				return m, nil
			}
			return m, tea.Batch(lengthenCmd(m.client, m.cookie, b.BorrowID, 7), refreshAllBorrowsCmd(m.client, m.cookie))
		case "e":
			b, ok := m.selectedAllBorrow()
			if !ok {
				return m, nil
			}
			return m, tea.Batch(endBorrowCmd(m.client, m.cookie, b.BorrowID), refreshAllBorrowsCmd(m.client, m.cookie))
		}
	}
	return m, cmd
}

func redactAddr(addr string) string {
	u, err := url.Parse(addr)
	if err != nil {
		return ""
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	return u.Scheme + "://" + u.Host
}
