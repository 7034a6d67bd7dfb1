package filter

import (
	"fmt"
	"strings"

	"smartfilter/logger"
)

// ModeSchema classifies a channel's mode letters by argument shape,
// built from ISUPPORT PREFIX and CHANMODES. Recomputed per raw-mode
// event from the current channel snapshot; never cached.
type ModeSchema struct {
	prefix string
	// CHANMODES classes, in order: list (hostmask), key, set-only
	// argument, no argument.
	classes [4]string
}

// NewModeSchema splits the comma-joined CHANMODES value into its four
// classes, padding with empty strings when the server reports fewer.
func NewModeSchema(prefixLetters, chanModes string) ModeSchema {
	schema := ModeSchema{prefix: prefixLetters}
	for i, class := range strings.Split(chanModes, ",") {
		if i >= len(schema.classes) {
			break
		}
		schema.classes[i] = class
	}
	return schema
}

// ModeChange is one (sign, letter, argument) triple from a raw mode
// string.
type ModeChange struct {
	Sign   byte
	Letter byte
	// Arg is the consumed token: the target nick for nick-targeting
	// triples, the hostmask/key/limit otherwise, empty for
	// argument-less letters.
	Arg string
	// NickTarget marks prefix-mode triples (op, voice, ...). Only
	// these are candidates for suppression.
	NickTarget bool
	// Unknown marks letters the schema cannot classify. Treated as
	// channel-affecting, never suppressible.
	Unknown bool
}

// Walk tokenizes a raw mode argument string and pairs each mode
// letter with the token it consumes. A malformed string (group
// without a sign, or a letter whose argument is missing) returns the
// triples classified so far plus an error; callers must fail open and
// show the event.
func (s ModeSchema) Walk(raw string) ([]ModeChange, error) {
	tokens := strings.Fields(raw)
	var changes []ModeChange

	i := 0
	for i < len(tokens) {
		group := tokens[i]
		i++

		if group[0] != '+' && group[0] != '-' {
			return changes, fmt.Errorf("mode group %q does not start with a sign", group)
		}

		var sign byte
		for j := 0; j < len(group); j++ {
			letter := group[j]
			if letter == '+' || letter == '-' {
				sign = letter
				continue
			}

			change := ModeChange{Sign: sign, Letter: letter}
			needsArg := false

			switch {
			case strings.IndexByte(s.prefix, letter) >= 0:
				change.NickTarget = true
				needsArg = true
			case strings.IndexByte(s.classes[0], letter) >= 0:
				needsArg = true
			case strings.IndexByte(s.classes[1], letter) >= 0:
				needsArg = true
			case strings.IndexByte(s.classes[2], letter) >= 0:
				needsArg = sign == '+'
			case strings.IndexByte(s.classes[3], letter) >= 0:
				// no argument
			default:
				logger.Debug("Unexpected mode letter", "letter", string(letter), "group", group)
				change.Unknown = true
			}

			if needsArg {
				if i >= len(tokens) {
					return changes, fmt.Errorf("mode letter %q in %q has no argument left", string(letter), raw)
				}
				change.Arg = tokens[i]
				i++
			}

			changes = append(changes, change)
		}
	}

	return changes, nil
}
