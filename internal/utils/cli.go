package utils

import (
	"errors"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Commands whose first argument is a slot id.
var idCommands = map[string]bool{
	"get":    true,
	"update": true,
	"free":   true,
	"stat":   true,
}

// SplitStringIntoCommandAndArguments splits a CLI line using shell quoting
// rules into the command name, its slot id argument (if the command takes
// one), and the content value. Remaining words are joined with single
// spaces, so `create "two  spaces"` keeps its inner spacing but
// `create a   b` becomes "a b".
func SplitStringIntoCommandAndArguments(line string) (cmd, arg, value string, err error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return "", "", "", err
	}
	if len(words) == 0 {
		return "", "", "", errors.New("empty command")
	}

	cmd = strings.ToLower(words[0])
	rest := words[1:]

	if idCommands[cmd] {
		if len(rest) == 0 {
			return "", "", "", errors.New(cmd + " requires a slot id")
		}
		arg, rest = rest[0], rest[1:]
	}

	return cmd, arg, strings.Join(rest, " "), nil
}
