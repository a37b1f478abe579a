package ui

import "fmt"

// RenderPrompt renders "<user>@<host>:<cwd>: " with user/host in cyan and
// cwd in green, per the shell's prompt contract.
func RenderPrompt(user, host, cwd string) string {
	userHost := PromptUserStyle.Render(fmt.Sprintf("%s@%s", user, host))
	path := PromptPathStyle.Render(cwd)
	return fmt.Sprintf("%s:%s: ", userHost, path)
}

// RenderGhostText dims the completer's inline best-guess suggestion.
func RenderGhostText(text string) string {
	return GhostTextStyle.Render(text)
}

// RenderSuggestions joins a completion list with tabs, the LineEditor's
// multi-match display contract.
func RenderSuggestions(matches []string) string {
	var s string
	for i, m := range matches {
		if i > 0 {
			s += "\t"
		}
		s += SuggestStyle.Render(m)
	}
	return s
}
