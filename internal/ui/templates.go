package ui

import (
	"fmt"
	"html/template"
	"io"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
	"isCurrent": func(current, path string) bool {
		return current == path
	},
}

// renderTemplate renders a page inside the layout.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if _, err := tmpl.New("content").Parse(content); err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	return tmpl.Execute(w, data)
}

// templates holds all page templates; each page defines "content".
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-50 min-h-screen">
    {{if .Session.IsAuthenticated}}
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
            <div class="flex justify-between h-16">
                <div class="flex">
                    <a href="/" class="flex items-center px-2 py-2 text-xl font-bold text-indigo-600">Admin Portal</a>
                    {{if .Session.IsAdmin}}
                    <div class="hidden sm:ml-6 sm:flex sm:space-x-8">
                        {{range .Menu}}
                        <a href="{{.Path}}" class="{{if isCurrent $.Path .Path}}border-indigo-500 text-gray-900{{else}}border-transparent text-gray-500{{end}} inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">{{.Title}}</a>
                        {{end}}
                    </div>
                    {{end}}
                </div>
                <div class="flex items-center">
                    <span class="text-sm text-gray-500 mr-4">{{.Session.User.Email}}</span>
                    <form action="/logout" method="POST">
                        <button type="submit" class="text-sm text-gray-500 hover:text-gray-700">Logout</button>
                    </form>
                </div>
            </div>
        </div>
    </nav>
    {{end}}

    <main class="max-w-7xl mx-auto py-6 sm:px-6 lg:px-8">
        {{if .Error}}<div class="rounded-md bg-red-50 p-4 mb-4"><div class="text-sm text-red-700">{{.Error}}</div></div>{{end}}
        {{if .Notice}}<div class="rounded-md bg-green-50 p-4 mb-4"><div class="text-sm text-green-700">{{.Notice}}</div></div>{{end}}
        {{template "content" .}}
    </main>
</body>
</html>`,

	"login": `{{define "content"}}
<div class="flex items-center justify-center py-12 px-4">
    <div class="max-w-md w-full space-y-8">
        <h2 class="mt-6 text-center text-3xl font-extrabold text-gray-900">Admin Login</h2>
        <form class="mt-8 space-y-6" action="/login" method="POST">
            <input type="hidden" name="from" value="{{.From}}">
            <div class="rounded-md shadow-sm -space-y-px">
                <input id="email" name="email" type="email" required value="{{.Email}}"
                       class="appearance-none rounded-t-md relative block w-full px-3 py-2 border border-gray-300" placeholder="Email">
                <input id="password" name="password" type="password" required
                       class="appearance-none rounded-b-md relative block w-full px-3 py-2 border border-gray-300" placeholder="Password">
            </div>
            <button type="submit" class="w-full py-2 px-4 text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">Sign in</button>
        </form>
    </div>
</div>
{{end}}`,

	"unauthorized": `{{define "content"}}
<div class="text-center py-12">
    <h1 class="text-4xl font-bold text-gray-900 mb-4">Unauthorized</h1>
    <p class="text-gray-600 mb-8">You do not have permission to access this page.</p>
</div>
{{end}}`,

	"error": `{{define "content"}}
<div class="text-center py-12">
    <h1 class="text-4xl font-bold text-gray-900 mb-4">Error</h1>
    <p class="text-gray-600 mb-8">{{.Message}}</p>
    <a href="/" class="text-indigo-600 hover:text-indigo-500">Return to Dashboard</a>
</div>
{{end}}`,

	"users": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Users</h1>
    <form action="/dashboard/users" method="POST" class="flex gap-2 mb-6">
        <input name="email" type="email" placeholder="Email" class="border px-2 py-1 rounded">
        <input name="password" type="password" placeholder="Password" class="border px-2 py-1 rounded">
        <select name="role" class="border px-2 py-1 rounded">
            <option value="user">user</option>
            <option value="admin">admin</option>
        </select>
        <button type="submit" class="px-4 py-1 text-sm rounded text-white bg-indigo-600">Add User</button>
    </form>
    <table class="min-w-full divide-y divide-gray-200 bg-white shadow rounded">
        <thead><tr><th class="px-4 py-2 text-left">Email</th><th class="px-4 py-2 text-left">Role</th><th class="px-4 py-2 text-left">Created</th><th></th></tr></thead>
        <tbody>
        {{range .Users}}
        <tr>
            <td class="px-4 py-2">
                <form id="edit-{{.ID}}" action="/dashboard/users/{{.ID}}" method="POST" class="flex gap-2">
                    <input name="email" type="email" value="{{.Email}}" class="border px-2 py-1 rounded">
                    <input name="password" type="password" placeholder="New password" class="border px-2 py-1 rounded">
                </form>
            </td>
            <td class="px-4 py-2">
                <select name="role" form="edit-{{.ID}}" class="border px-2 py-1 rounded">
                    <option value="user" {{if eq (print .Role) "user"}}selected{{end}}>user</option>
                    <option value="admin" {{if eq (print .Role) "admin"}}selected{{end}}>admin</option>
                </select>
            </td>
            <td class="px-4 py-2 text-sm text-gray-500">{{orDash .CreatedAt}}</td>
            <td class="px-4 py-2 flex gap-2">
                <button type="submit" form="edit-{{.ID}}" class="text-indigo-600">Save</button>
                <form action="/dashboard/users/{{.ID}}/delete" method="POST" onsubmit="return confirm('Are you sure you want to delete this user?')">
                    <button type="submit" class="text-red-600">Delete</button>
                </form>
            </td>
        </tr>
        {{else}}
        <tr><td colspan="4" class="px-4 py-6 text-center text-gray-500">No users found.</td></tr>
        {{end}}
        </tbody>
    </table>
</div>
{{end}}`,

	"categories": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Categories</h1>
    <form action="/dashboard/categories" method="POST" class="flex gap-2 mb-6">
        <input name="name" placeholder="Name" class="border px-2 py-1 rounded">
        <input name="description" placeholder="Description" class="border px-2 py-1 rounded w-96">
        <button type="submit" class="px-4 py-1 text-sm rounded text-white bg-indigo-600">Add Category</button>
    </form>
    <table class="min-w-full divide-y divide-gray-200 bg-white shadow rounded">
        <thead><tr><th class="px-4 py-2 text-left">Name</th><th class="px-4 py-2 text-left">Description</th><th class="px-4 py-2 text-left">Created</th><th></th></tr></thead>
        <tbody>
        {{range .Categories}}
        <tr>
            <td class="px-4 py-2"><input name="name" form="edit-{{.ID}}" value="{{.Name}}" class="border px-2 py-1 rounded"></td>
            <td class="px-4 py-2"><input name="description" form="edit-{{.ID}}" value="{{.Description}}" class="border px-2 py-1 rounded w-96"></td>
            <td class="px-4 py-2 text-sm text-gray-500">{{orDash .CreatedAt}}</td>
            <td class="px-4 py-2">
                <form id="edit-{{.ID}}" action="/dashboard/categories/{{.ID}}" method="POST">
                    <button type="submit" class="text-indigo-600">Save</button>
                </form>
            </td>
        </tr>
        {{else}}
        <tr><td colspan="4" class="px-4 py-6 text-center text-gray-500">No categories found.</td></tr>
        {{end}}
        </tbody>
    </table>
</div>
{{end}}`,

	"tags": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Tags</h1>
    <form action="/dashboard/tags" method="POST" class="flex gap-2 mb-6">
        <input name="name" placeholder="New tag name" class="border px-2 py-1 rounded">
        <button type="submit" class="px-4 py-1 text-sm rounded text-white bg-indigo-600">Add Tag</button>
    </form>
    <table class="min-w-full divide-y divide-gray-200 bg-white shadow rounded">
        <thead><tr><th class="px-4 py-2 text-left">Name</th><th class="px-4 py-2 text-left">Created</th><th></th></tr></thead>
        <tbody>
        {{range .Tags}}
        <tr>
            <td class="px-4 py-2"><input name="name" form="edit-{{.ID}}" value="{{.Name}}" class="border px-2 py-1 rounded"></td>
            <td class="px-4 py-2 text-sm text-gray-500">{{orDash .CreatedAt}}</td>
            <td class="px-4 py-2">
                <form id="edit-{{.ID}}" action="/dashboard/tags/{{.ID}}" method="POST">
                    <button type="submit" class="text-indigo-600">Save</button>
                </form>
            </td>
        </tr>
        {{else}}
        <tr><td colspan="3" class="px-4 py-6 text-center text-gray-500">No tags found.</td></tr>
        {{end}}
        </tbody>
    </table>
</div>
{{end}}`,
}
