package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0roo/vibespinner/internal/auth"
)

var authPassword string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the signed-in user",
}

var authLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in, creating the account on first use",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  runAuthLogout,
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runAuthWhoami,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)

	authLoginCmd.Flags().StringVar(&authPassword, "password", "", "Password (default: $VIBE_PASSWORD or prompt)")
}

func readPassword() (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	if env := os.Getenv("VIBE_PASSWORD"); env != "" {
		return env, nil
	}
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	provider, cleanup, err := getAuth()
	if err != nil {
		return err
	}
	defer cleanup()

	password, err := readPassword()
	if err != nil {
		return err
	}

	session, err := auth.SignInOrSignUp(provider, args[0], password)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(session)
	}
	fmt.Printf("✓ Signed in as %s <%s>\n", session.DisplayName, session.Email)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	provider, cleanup, err := getAuth()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := provider.SignOut(); err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "signed_out"})
	}
	fmt.Println("✓ Signed out")
	return nil
}

func runAuthWhoami(cmd *cobra.Command, args []string) error {
	provider, cleanup, err := getAuth()
	if err != nil {
		return err
	}
	defer cleanup()

	session, ok, err := provider.Current()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(session)
	}
	fmt.Printf("%s <%s>\n", session.DisplayName, session.Email)
	if verbose {
		fmt.Printf("  id:     %s\n", session.UserID)
		fmt.Printf("  avatar: %s\n", session.AvatarURL)
	}
	return nil
}
