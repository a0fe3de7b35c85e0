// ABOUTME: Cobra command for the full-screen blog browser.
// ABOUTME: Opens the bubbletea browser at an optional starting route.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/quill/internal/blog"
	"github.com/2389-research/quill/internal/render"
	"github.com/2389-research/quill/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [route]",
	Short: "Browse posts in a full-screen TUI",
	Long: `Browse, read, write, and delete posts interactively.

Routes: / (list), /{id} (read), /post/{id} (edit), /post/new, /login.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	start := blog.Route{Kind: blog.RouteList}
	if len(args) == 1 {
		route, err := blog.ParseRoute(args[0])
		if err != nil {
			return err
		}
		start = route
	}

	r, err := render.New(globalConfig.Render.Style, globalConfig.Render.Width)
	if err != nil {
		return err
	}

	model := tui.NewBrowser(cmd.Context(), tui.BrowserDeps{
		Gateway:  globalClient,
		Tokens:   globalTokens,
		Renderer: r,
		Logger:   globalLogger,
	}, start)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
