package users

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

// GetPassword prints prompt to w and reads a password from the terminal
// without echo.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// PromptAccount asks for a password twice and returns an account carrying
// its bcrypt hash, ready for the users section of the config file.
func PromptAccount(w io.Writer, username string, role string, cost int) (Account, error) {
	pw, err := GetPassword(w, "Enter password: ")
	if err != nil {
		return Account{}, err
	}
	defer clear(pw)

	again, err := GetPassword(w, "Repeat password: ")
	if err != nil {
		return Account{}, err
	}
	defer clear(again)

	if len(pw) == 0 {
		return Account{}, errors.New("password must not be empty")
	}
	if !bytes.Equal(pw, again) {
		return Account{}, errPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword(pw, cost)
	if err != nil {
		return Account{}, err
	}

	a := Account{Username: username, Role: models.Role(role), PasswordHash: string(hash)}
	if _, err := NewDirectory([]Account{a}); err != nil {
		return Account{}, err
	}
	return a, nil
}
