// ABOUTME: CLI commands for reading and changing blog posts.
// ABOUTME: Provides list, read, new, edit, and delete on top of the post controller.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/quill/internal/blog"
	"github.com/2389-research/quill/internal/models"
	"github.com/2389-research/quill/internal/render"
	"github.com/2389-research/quill/internal/search"
	"github.com/2389-research/quill/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	Long:  "List posts in the order the server returns them.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Read a post",
	Long:  "Fetch a post and render its Markdown body.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a post",
	Long:  "Create a new post. Content comes from --content or --file.",
	Args:  cobra.NoArgs,
	RunE:  runNew,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a post you own",
	Long:  "Update the title and/or content of a post. Omitted fields keep their current value.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Long:  "Delete a post. The server refuses posts you do not own.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// Flags
var (
	postTitle   string
	postContent string
	postFile    string
	assumeYes   bool
	readRaw     bool
	listSearch  string
	listLimit   int
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)

	listCmd.Flags().StringVar(&listSearch, "search", "", "Only show posts matching a query, best match first")
	listCmd.Flags().IntVar(&listLimit, "limit", 10, "Maximum number of search results")
	readCmd.Flags().BoolVar(&readRaw, "raw", false, "Print Markdown without rendering")

	for _, c := range []*cobra.Command{newCmd, editCmd} {
		c.Flags().StringVar(&postTitle, "title", "", "Post title")
		c.Flags().StringVar(&postContent, "content", "", "Post body in Markdown")
		c.Flags().StringVar(&postFile, "file", "", "Read the post body from a file (- for stdin)")
		c.MarkFlagsMutuallyExclusive("content", "file")
	}
	for _, c := range []*cobra.Command{newCmd, editCmd, deleteCmd} {
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	}
	_ = newCmd.MarkFlagRequired("title")
}

// cliUI prints controller alerts. Navigation has no meaning for a one-shot
// command, so it is dropped.
type cliUI struct {
	out io.Writer
}

func (u *cliUI) Alert(msg string) {
	fmt.Fprintln(u.out, msg)
}

func (u *cliUI) Navigate(string) {}

func newDriver(cmd *cobra.Command) *blog.Driver {
	ui := &cliUI{out: cmd.OutOrStdout()}
	ctrl := blog.NewController(globalClient, globalTokens, ui, ui, blog.WithLogger(globalLogger))

	var confirm blog.Confirmer = tui.PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	if assumeYes {
		confirm = blog.ConfirmFunc(func(context.Context, string) bool { return true })
	}
	return blog.NewDriver(ctrl, confirm)
}

func runList(cmd *cobra.Command, args []string) error {
	list := blog.NewListController(globalClient, globalTokens)
	posts, err := list.LoadAll(cmd.Context())
	if err != nil {
		return err
	}

	if listSearch != "" {
		results, err := search.Posts(search.NewHashEmbedder(0), posts, listSearch, search.Options{Limit: listLimit})
		if err != nil {
			return fmt.Errorf("failed to search posts: %w", err)
		}
		posts = posts[:0]
		for _, r := range results {
			posts = append(posts, r.Post)
		}
	}

	out := cmd.OutOrStdout()
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts found.")
	}
	for _, p := range posts {
		fmt.Fprintf(out, "%-8s %-50s %s\n", p.ID, p.Title, p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if list.CanCreate() {
		fmt.Fprintln(out, "\n(new: quill new)")
	}
	return nil
}

func runRead(cmd *cobra.Command, args []string) error {
	d := newDriver(cmd)
	out := cmd.OutOrStdout()

	if d.Open(cmd.Context(), blog.Route{Kind: blog.RouteRead, ID: args[0]}) != blog.StateViewing {
		fmt.Fprintln(out, blog.NotFoundMessage)
		return nil
	}

	ctrl := d.Controller()
	post := ctrl.Post()
	if readRaw {
		fmt.Fprintf(out, "# %s\n\n%s\n", post.Title, post.Content)
	} else {
		r, err := render.New(globalConfig.Render.Style, globalConfig.Render.Width)
		if err != nil {
			return err
		}
		rendered, err := r.Post(post)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
	}

	if ctrl.CanEdit() {
		fmt.Fprintf(out, "[owner] quill edit %s | quill delete %s\n", post.ID, post.ID)
	}
	return nil
}

// bodyFromFlags returns the content from --file or --content and whether either was given.
func bodyFromFlags(cmd *cobra.Command) (string, bool, error) {
	if cmd.Flags().Changed("file") {
		var data []byte
		var err error
		if postFile == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(postFile)
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to read content: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), true, nil
	}
	return postContent, cmd.Flags().Changed("content"), nil
}

func runNew(cmd *cobra.Command, args []string) error {
	content, _, err := bodyFromFlags(cmd)
	if err != nil {
		return err
	}
	if _, ok := globalTokens.Get(); !ok {
		return fmt.Errorf("not logged in - run `quill login` first")
	}

	d := newDriver(cmd)
	d.Open(cmd.Context(), blog.Route{Kind: blog.RouteEdit, ID: models.NewPostID})
	return finishSave(cmd, d.Save(cmd.Context(), postTitle, content), "create")
}

func runEdit(cmd *cobra.Command, args []string) error {
	id := args[0]
	content, contentSet, err := bodyFromFlags(cmd)
	if err != nil {
		return err
	}
	if !contentSet && !cmd.Flags().Changed("title") {
		return fmt.Errorf("nothing to change: pass --title, --content, or --file")
	}

	d := newDriver(cmd)
	switch d.Open(cmd.Context(), blog.Route{Kind: blog.RouteEdit, ID: id}) {
	case blog.StateEditing:
	case blog.StateRedirected:
		return fmt.Errorf("you do not own post %s", id)
	default:
		return errors.New(blog.NotFoundMessage)
	}

	draft := d.Controller().Draft()
	if cmd.Flags().Changed("title") {
		draft.Title = postTitle
	}
	if contentSet {
		draft.Content = content
	}
	return finishSave(cmd, d.Save(cmd.Context(), draft.Title, draft.Content), "update")
}

func finishSave(cmd *cobra.Command, err error, op string) error {
	if errors.Is(err, blog.ErrDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to %s post: %w", op, err)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	d := newDriver(cmd)
	if d.Open(cmd.Context(), blog.Route{Kind: blog.RouteRead, ID: args[0]}) != blog.StateViewing {
		return errors.New(blog.NotFoundMessage)
	}

	err := d.Delete(cmd.Context())
	if errors.Is(err, blog.ErrDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
