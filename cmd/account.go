package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/auth"
	"github.com/theirongolddev/fintrack/internal/cli"
)

var (
	flagAccountEmail    string
	flagAccountPassword string

	flagProfileNotifications string
	flagProfileImage         string
	flagProfileClearImage    bool
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create the local account",
	RunE:  runSignup,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the local account",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged-in email",
	RunE:  runWhoami,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change profile settings",
	RunE:  runProfile,
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&flagAccountEmail, "email", "", "Account email (prompted when omitted)")
		c.Flags().StringVar(&flagAccountPassword, "password", "", "Account password (prompted when omitted)")
	}
	profileCmd.Flags().StringVar(&flagProfileNotifications, "notifications", "", "Turn notifications on or off")
	profileCmd.Flags().StringVar(&flagProfileImage, "image", "", "Set the profile picture from an image file")
	profileCmd.Flags().BoolVar(&flagProfileClearImage, "clear-image", false, "Remove the profile picture")

	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd, profileCmd)
}

func runSignup(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if has, err := a.accounts.HasAccount(); err != nil {
		return err
	} else if has {
		ok, err := confirm("An account already exists. Replace it?", false)
		if err != nil || !ok {
			return err
		}
	}

	email, password := flagAccountEmail, flagAccountPassword
	confirmPassword := password
	if email == "" || password == "" {
		if err := signupForm(&email, &password, &confirmPassword).Run(); err != nil {
			return err
		}
	}
	if err := a.accounts.Signup(email, password, confirmPassword); err != nil {
		return err
	}
	fmt.Printf("  Signed up and logged in as %s\n", email)
	return nil
}

// signupForm collects email, password and its confirmation.
func signupForm(email, password, confirmPassword *string) *huh.Form {
	return huh.NewForm(signupGroup(email, password, confirmPassword))
}

func signupGroup(email, password, confirmPassword *string) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(email).
			Validate(required("email")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("password")),
		huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Value(confirmPassword).
			Validate(func(s string) error {
				if s != *password {
					return auth.ErrPasswordMismatch
				}
				return nil
			}),
	).Title("Create your account")
}

func runLogin(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	email, password := flagAccountEmail, flagAccountPassword
	if err := promptCredentials("Log in", &email, &password); err != nil {
		return err
	}
	if err := a.accounts.Login(email, password); err != nil {
		return err
	}
	fmt.Printf("  Logged in as %s\n", email)
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.accounts.Logout(); err != nil {
		return err
	}
	fmt.Println("  Logged out")
	return nil
}

func runWhoami(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	email, err := a.accounts.CurrentUser()
	if errors.Is(err, auth.ErrNotLoggedIn) {
		fmt.Println("  Not logged in")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("  %s\n", email)
	return nil
}

func runProfile(cmd *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	flags := cmd.Flags()
	if flags.Changed("notifications") {
		on, err := parseOnOff(flagProfileNotifications)
		if err != nil {
			return err
		}
		if err := a.center.SetEnabled(on); err != nil {
			return err
		}
	}
	switch {
	case flagProfileClearImage:
		if err := a.accounts.SetProfileImage(nil); err != nil {
			return err
		}
	case flagProfileImage != "":
		data, err := os.ReadFile(flagProfileImage)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		if err := a.accounts.SetProfileImage(data); err != nil {
			return err
		}
	}

	email, err := a.accounts.CurrentUser()
	if err != nil {
		return err
	}
	enabled, err := a.center.Enabled()
	if err != nil {
		return err
	}
	img, err := a.accounts.ProfileImage()
	if err != nil {
		return err
	}

	notifications := cli.Income("on")
	if !enabled {
		notifications = cli.Muted("off")
	}
	picture := cli.Muted("none")
	if img != "" {
		picture = fmt.Sprintf("%s base64 chars", cli.FormatNumber(int64(len(img))))
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROFILE"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Setting", "Value"},
		Rows: [][]string{
			{"Email", email},
			{"Notifications", notifications},
			{"Profile picture", picture},
			{"Data dir", dataDir()},
		},
	}))
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", s)
}
