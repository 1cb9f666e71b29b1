// Package hunt implements the scavenger hunt core: command parsing, the
// game progression engine and the inbound-message processor.
package hunt

import "strings"

// Command is one of the closed set of player commands.
type Command int

const (
	CommandHelp Command = iota
	CommandStart
	CommandHint
	CommandAnswer
)

const answerPrefix = "ANSWER "

// String returns the command keyword.
func (c Command) String() string {
	switch c {
	case CommandStart:
		return "START"
	case CommandHint:
		return "HINT"
	case CommandAnswer:
		return "ANSWER"
	default:
		return "HELP"
	}
}

// ParseCommand classifies a raw inbound message body. Matching is
// case-insensitive after trimming surrounding whitespace; anything
// unrecognized degrades to HELP rather than an error. For ANSWER commands
// the payload is the text following the keyword, trimmed.
func ParseCommand(body string) (Command, string) {
	trimmed := strings.TrimSpace(body)
	upper := strings.ToUpper(trimmed)

	switch {
	case upper == "START":
		return CommandStart, ""
	case upper == "HINT":
		return CommandHint, ""
	case strings.HasPrefix(upper, answerPrefix):
		return CommandAnswer, strings.TrimSpace(trimmed[len(answerPrefix):])
	case upper == "HELP":
		return CommandHelp, ""
	default:
		return CommandHelp, ""
	}
}
