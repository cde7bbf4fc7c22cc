// Package setup initializes the database and creates the first librarian
// account interactively.
package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RealKC/bd-homework/internal/auth"
	"github.com/RealKC/bd-homework/internal/db"
	"github.com/RealKC/bd-homework/internal/validate"
	"golang.org/x/term"
)

type Options struct {
	DBPath string
}

func Run(ctx context.Context, opt Options) error {
	if opt.DBPath == "" {
		return errors.New("db path is required")
	}
	if dir := filepath.Dir(opt.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	d, err := db.Open(ctx, opt.DBPath)
	if err != nil {
		return err
	}
	defer d.Close()
	_ = os.Chmod(opt.DBPath, 0o600)

	exists, err := d.HasLibrarian(ctx)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("a librarian account already exists")
	}

	name, err := promptLine("Librarian name")
	if err != nil {
		return err
	}
	email, err := promptLine("Librarian email")
	if err != nil {
		return err
	}
	password, err := promptPassword("Librarian password")
	if err != nil {
		return err
	}
	if err := validate.Signup(name, email, password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password, auth.DefaultArgon2Params())
	if err != nil {
		return err
	}
	id, err := d.CreateLibrarian(ctx, name, email, hash)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "created librarian account %d (%s)\n", id, email)
	return nil
}

func promptLine(label string) (string, error) {
	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprintf(os.Stderr, "%s: ", label)
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Fprintln(os.Stderr, "a value is required")
			continue
		}
		return line, nil
	}
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		for {
			fmt.Fprintf(os.Stderr, "%s: ", label)
			p1b, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return "", err
			}
			fmt.Fprint(os.Stderr, "Confirm password: ")
			p2b, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return "", err
			}
			p1 := strings.TrimSpace(string(p1b))
			p2 := strings.TrimSpace(string(p2b))
			if p1 == "" {
				fmt.Fprintln(os.Stderr, "password cannot be empty")
				continue
			}
			if p1 != p2 {
				fmt.Fprintln(os.Stderr, "passwords do not match")
				continue
			}
			return p1, nil
		}
	}

	// Non-interactive fallback (e.g. piped input). Echo suppression isn't possible.
	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprintf(os.Stderr, "%s: ", label)
		p1, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		fmt.Fprint(os.Stderr, "Confirm password: ")
		p2, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		p1 = strings.TrimSpace(p1)
		p2 = strings.TrimSpace(p2)
		if p1 == "" {
			fmt.Fprintln(os.Stderr, "password cannot be empty")
			continue
		}
		if p1 != p2 {
			fmt.Fprintln(os.Stderr, "passwords do not match")
			continue
		}
		return p1, nil
	}
}
