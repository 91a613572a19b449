package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/carlmjohnson/be"

	"github.com/theirongolddev/fintrack/internal/store"
)

func newAccounts(t *testing.T) (*Accounts, *store.Store) {
	t.Helper()
	prefs, err := store.Open(filepath.Join(t.TempDir(), "prefs.db"))
	be.NilErr(t, err)
	t.Cleanup(func() { _ = prefs.Close() })
	return New(prefs), prefs
}

func TestSignupLoginLogout(t *testing.T) {
	a, prefs := newAccounts(t)

	_, err := a.CurrentUser()
	be.True(t, errors.Is(err, ErrNotLoggedIn))

	be.NilErr(t, a.Signup(" me@example.com ", "hunter2", "hunter2"))
	user, err := a.CurrentUser()
	be.NilErr(t, err)
	be.Equal(t, "me@example.com", user)

	hash, _, _ := prefs.GetString(store.NSUser, store.KeyUserPassword)
	be.True(t, hash != "hunter2")

	be.NilErr(t, a.Logout())
	in, err := a.LoggedIn()
	be.NilErr(t, err)
	be.False(t, in)
	be.True(t, errors.Is(a.RequireLogin(), ErrNotLoggedIn))

	be.True(t, errors.Is(a.Login("me@example.com", "wrong"), ErrInvalidCredentials))
	be.True(t, errors.Is(a.Login("you@example.com", "hunter2"), ErrInvalidCredentials))
	be.NilErr(t, a.Login("ME@example.com", "hunter2"))
	be.NilErr(t, a.RequireLogin())
}

func TestSignupValidation(t *testing.T) {
	a, _ := newAccounts(t)

	be.True(t, errors.Is(a.Signup("", "pw", "pw"), ErrMissingField))
	be.True(t, errors.Is(a.Signup("me@example.com", "", ""), ErrMissingField))
	be.True(t, errors.Is(a.Signup("me@example.com", "one", "two"), ErrPasswordMismatch))

	has, err := a.HasAccount()
	be.NilErr(t, err)
	be.False(t, has)
}

func TestVerifyWithoutAccount(t *testing.T) {
	a, _ := newAccounts(t)
	be.True(t, errors.Is(a.Verify("me@example.com", "pw"), ErrNoAccount))
}

func TestProfileImage(t *testing.T) {
	a, _ := newAccounts(t)

	img, err := a.ProfileImage()
	be.NilErr(t, err)
	be.Equal(t, "", img)

	be.NilErr(t, a.SetProfileImage([]byte("png")))
	img, err = a.ProfileImage()
	be.NilErr(t, err)
	be.Equal(t, "cG5n", img)

	be.NilErr(t, a.SetProfileImage(nil))
	img, err = a.ProfileImage()
	be.NilErr(t, err)
	be.Equal(t, "", img)
}
