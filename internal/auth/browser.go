package auth

import "github.com/pkg/browser"

// BrowserOpener opens a URL in the user's browser for the interactive
// half of the browser authentication flow.
type BrowserOpener interface {
	Open(url string) error
}

// SystemBrowser opens URLs with the platform's default browser.
type SystemBrowser struct{}

func (SystemBrowser) Open(url string) error {
	return browser.OpenURL(url)
}
