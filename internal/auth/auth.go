// Package auth manages the single local account guarding the ledger.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/theirongolddev/fintrack/internal/store"
)

var (
	ErrNoAccount          = errors.New("no account, run signup first")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrMissingField       = errors.New("email and password are required")
)

// Accounts reads and writes the account kept in the user namespace.
type Accounts struct {
	prefs *store.Store
}

// New returns Accounts backed by prefs.
func New(prefs *store.Store) *Accounts {
	return &Accounts{prefs: prefs}
}

// Signup replaces any existing account and logs it in.
func (a *Accounts) Signup(email, password, confirm string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || confirm == "" {
		return ErrMissingField
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	err = a.prefs.Update(func(tx *store.Tx) error {
		if err := tx.PutString(store.NSUser, store.KeyUserEmail, email); err != nil {
			return err
		}
		if err := tx.PutString(store.NSUser, store.KeyUserPassword, hash); err != nil {
			return err
		}
		return tx.PutBool(store.NSUser, store.KeyLoggedIn, true)
	})
	if err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	log.Info("account created", "email", email)
	return nil
}

// HashPassword returns the bcrypt hash stored for an account password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify checks email and password against the stored account.
func (a *Accounts) Verify(email, password string) error {
	stored, ok, err := a.prefs.GetString(store.NSUser, store.KeyUserEmail)
	if err != nil {
		return err
	}
	if !ok || stored == "" {
		return ErrNoAccount
	}
	hash, _, err := a.prefs.GetString(store.NSUser, store.KeyUserPassword)
	if err != nil {
		return err
	}
	if !strings.EqualFold(stored, strings.TrimSpace(email)) {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies the credentials and marks the account logged in.
func (a *Accounts) Login(email, password string) error {
	if err := a.Verify(email, password); err != nil {
		return err
	}
	return a.prefs.PutBool(store.NSUser, store.KeyLoggedIn, true)
}

// Logout keeps the account but clears the session flag.
func (a *Accounts) Logout() error {
	return a.prefs.PutBool(store.NSUser, store.KeyLoggedIn, false)
}

// LoggedIn reports the session flag.
func (a *Accounts) LoggedIn() (bool, error) {
	return a.prefs.GetBool(store.NSUser, store.KeyLoggedIn, false)
}

// HasAccount reports whether signup has happened.
func (a *Accounts) HasAccount() (bool, error) {
	email, ok, err := a.prefs.GetString(store.NSUser, store.KeyUserEmail)
	return ok && email != "", err
}

// CurrentUser returns the logged-in email.
func (a *Accounts) CurrentUser() (string, error) {
	in, err := a.LoggedIn()
	if err != nil {
		return "", err
	}
	if !in {
		return "", ErrNotLoggedIn
	}
	email, _, err := a.prefs.GetString(store.NSUser, store.KeyUserEmail)
	return email, err
}

// RequireLogin returns ErrNotLoggedIn unless a session is active.
func (a *Accounts) RequireLogin() error {
	_, err := a.CurrentUser()
	return err
}

// ProfileImage returns the stored profile picture, base64 encoded, or "".
func (a *Accounts) ProfileImage() (string, error) {
	v, _, err := a.prefs.GetString(store.NSProfile, store.KeyProfileImage)
	return v, err
}

// SetProfileImage stores raw image bytes as base64. Empty data removes the
// picture.
func (a *Accounts) SetProfileImage(data []byte) error {
	if len(data) == 0 {
		return a.prefs.Remove(store.NSProfile, store.KeyProfileImage)
	}
	return a.prefs.PutString(store.NSProfile, store.KeyProfileImage, base64.StdEncoding.EncodeToString(data))
}
