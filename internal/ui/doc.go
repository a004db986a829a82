// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is driven by paths rather than a fixed sequence of views. Every navigation goes
// through [router.Resolve]:
//   - a protected page shows a spinner while the session is still bootstrapping
//   - a protected page redirects to the login form once the session is anonymous
//   - anything else renders the matched page and starts its loaders
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Loaders run the actions controller in commands; search debouncing and alert expiry
// happen on timer goroutines and reach the model through [Model.Attach].
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
