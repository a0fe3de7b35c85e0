// ABOUTME: CLI commands for the stored login.
// ABOUTME: login runs the bubbletea wizard; logout and status manage the credential file.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/quill/internal/blog"
	"github.com/2389-research/quill/internal/config"
	"github.com/2389-research/quill/internal/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the blog",
	Long:  "Interactive wizard that exchanges email and password for a token and stores it.",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend and login status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var loginEmail string

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Pre-fill the email address")
}

func newSession() *blog.Session {
	return blog.NewSession(globalClient, globalTokens, blog.NavigatorFunc(func(string) {}))
}

func runLogin(cmd *cobra.Command, args []string) error {
	model := tui.NewLoginModel(loginEmail, newSession().Login)

	p := tea.NewProgram(model, tea.WithContext(cmd.Context()))
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.LoginModel)
	if !final.LoggedIn() {
		fmt.Fprintln(cmd.OutOrStdout(), "Login cancelled.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", final.Email())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := newSession().Logout(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "API:        %s\n", globalClient.BaseURL())

	if path, err := config.GetConfigPath(); err == nil {
		fmt.Fprintf(out, "Config:     %s\n", path)
	}
	if path, err := config.CredentialPath(); err == nil {
		fmt.Fprintf(out, "Credential: %s\n", path)
	}
	if newSession().LoggedIn() {
		fmt.Fprintln(out, "Logged in:  yes")
	} else {
		fmt.Fprintln(out, "Logged in:  no")
	}
	return nil
}
