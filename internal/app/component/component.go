// Package component contains the HTML components rendered by the web app.
package component

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

// Login form submission types.
const (
	LoginTypeLogin    = "login"
	LoginTypeRegister = "register"
)

// LoginProps are the values rendered into the login form.
type LoginProps struct {
	LoginType  string
	Username   string
	RedirectTo string
	Error      string
}
