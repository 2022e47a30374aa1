package guard

// Route paths.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	UsersPath        = "/dashboard/users"
	CategoriesPath   = "/dashboard/categories"
	TagsPath         = "/dashboard/tags"

	// HomePath is where "/" and a login without a usable origin lead.
	HomePath = UsersPath
)

// Route is one entry of the route table.
type Route struct {
	Path        string
	Title       string
	Requirement Requirement
}

var routes = []Route{
	{Path: LoginPath, Title: "Login", Requirement: Public},
	{Path: UnauthorizedPath, Title: "Unauthorized", Requirement: Authenticated},
	{Path: UsersPath, Title: "Users", Requirement: Admin},
	{Path: CategoriesPath, Title: "Categories", Requirement: Admin},
	{Path: TagsPath, Title: "Tags", Requirement: Admin},
}

var aliases = map[string]string{
	"/":          HomePath,
	"/dashboard": HomePath,
}

// Routes returns the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// DashboardRoutes returns the admin views in menu order.
func DashboardRoutes() []Route {
	var out []Route
	for _, r := range routes {
		if r.Requirement == Admin {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns the route registered at an already resolved path.
func Lookup(p string) (Route, bool) {
	for _, r := range routes {
		if r.Path == p {
			return r, true
		}
	}
	return Route{}, false
}
