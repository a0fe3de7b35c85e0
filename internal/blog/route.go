// ABOUTME: Client-visible routes: list, read, editor, and login.
// ABOUTME: Parses route paths and renders them back.
package blog

import (
	"fmt"
	"strings"

	"github.com/2389-research/quill/internal/models"
)

// RouteKind identifies which view a route shows.
type RouteKind int

const (
	RouteList RouteKind = iota
	RouteRead
	RouteEdit
	RouteLogin
)

func (k RouteKind) String() string {
	switch k {
	case RouteList:
		return "list"
	case RouteRead:
		return "read"
	case RouteEdit:
		return "edit"
	case RouteLogin:
		return "login"
	}
	return fmt.Sprintf("RouteKind(%d)", int(k))
}

// Route is a parsed client route. ID is set for read and edit routes.
type Route struct {
	Kind RouteKind
	ID   string
}

// IsNew returns true for the editor of a post that does not exist yet.
func (r Route) IsNew() bool {
	return r.Kind == RouteEdit && r.ID == models.NewPostID
}

// Path renders the route back to its path.
func (r Route) Path() string {
	switch r.Kind {
	case RouteRead:
		return ReadPath(r.ID)
	case RouteEdit:
		return EditPath(r.ID)
	case RouteLogin:
		return "/login"
	}
	return "/"
}

// ReadPath is the path of the read view for id.
func ReadPath(id string) string {
	return "/" + id
}

// EditPath is the path of the editor for id, or for a new post when id is "new".
func EditPath(id string) string {
	return "/post/" + id
}

// ParseRoute parses "/", "/login", "/{id}" and "/post/{id|new}".
func ParseRoute(path string) (Route, error) {
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "/") {
		return Route{}, fmt.Errorf("route %q must start with /", path)
	}
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return Route{Kind: RouteList}, nil
	}

	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) == 1 && parts[0] == "login":
		return Route{Kind: RouteLogin}, nil
	case len(parts) == 1 && parts[0] == "post":
	case len(parts) == 1:
		return Route{Kind: RouteRead, ID: parts[0]}, nil
	case len(parts) == 2 && parts[0] == "post" && parts[1] != "":
		return Route{Kind: RouteEdit, ID: parts[1]}, nil
	}
	return Route{}, fmt.Errorf("unknown route %q", path)
}
