package ui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	cmdUsername = "username"
	cmdPassword = "password"
	cmdQuit     = "quit"
)

var commands = []string{cmdUsername, cmdPassword, cmdQuit}

// parseCommand splits a ":name args" line. ok is false for an empty command.
func parseCommand(line string) (name, arg string, ok bool) {
	body := strings.TrimPrefix(line, ":")
	body = strings.TrimLeftFunc(body, unicode.IsSpace)
	if body == "" {
		return "", "", false
	}
	name, arg, _ = strings.Cut(body, " ")
	return name, strings.TrimSpace(arg), true
}

// unknownCommand explains why name is not a command, suggesting the closest
// one when it is a likely typo.
func unknownCommand(name string) string {
	best, dist := "", -1
	for _, cmd := range commands {
		d := fuzzy.LevenshteinDistance(cmd, name)
		if dist < 0 || d < dist {
			best, dist = cmd, d
		}
	}
	if dist < 3 {
		return fmt.Sprintf("Not a command. Did you mean %q?", best)
	}
	return fmt.Sprintf("Not a maruska command: %q", name)
}

// maskPassword hides the argument of a :password line.
func maskPassword(line string) string {
	prefix := ":" + cmdPassword + " "
	rest, ok := strings.CutPrefix(line, prefix)
	if !ok {
		return line
	}
	return prefix + strings.Repeat("*", len([]rune(rest)))
}

// deleteWord removes the last word but keeps the mode prefix.
func deleteWord(line string) string {
	if len(line) <= 1 {
		return ""
	}
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	cut := strings.LastIndexFunc(trimmed, unicode.IsSpace) + 1
	return line[:max(cut, 1)]
}

// deleteLine clears everything after the mode prefix, or the prefix itself
// when nothing follows it.
func deleteLine(line string) string {
	if len(line) <= 1 {
		return ""
	}
	return line[:1]
}
