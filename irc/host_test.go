package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixLetters(t *testing.T) {
	assert.Equal(t, "ov", prefixLetters("(ov)@+"))
	assert.Equal(t, "qaohv", prefixLetters("(qaohv)~&@%+"))
	assert.Equal(t, "ov", prefixLetters("ov"), "bare letters pass through")
	assert.Equal(t, "", prefixLetters("(ov"))
}

func TestFoldNick(t *testing.T) {
	tests := []struct {
		casemapping string
		nick        string
		want        string
	}{
		{"rfc1459", "Bob", "bob"},
		{"rfc1459", "Nick[away]", "nick{away}"},
		{"rfc1459", `Back\Slash`, "back|slash"},
		{"rfc1459", "Wavy~", "wavy^"},
		{"strict-rfc1459", "Wavy~", "wavy~"},
		{"strict-rfc1459", "Nick[away]", "nick{away}"},
		{"ascii", "Nick[away]", "nick[away]"},
		{"", "Nick[away]", "nick{away}"}, // missing ISUPPORT falls back to rfc1459
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, foldNick(tt.casemapping, tt.nick),
			"casemapping=%q nick=%q", tt.casemapping, tt.nick)
	}
}

func TestCasefold(t *testing.T) {
	assert.Equal(t, "{friend}", Casefold("[Friend]"))
	assert.Equal(t, "back|slash^", Casefold(`Back\Slash~`))
}
