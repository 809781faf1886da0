package nickgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandom_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		nick := Random()
		parts := strings.SplitN(nick, " ", 2)
		require.Len(t, parts, 2, "nickname %q is not adjective + noun", nick)
		require.Contains(t, adjectives, parts[0])
		require.Contains(t, nouns, parts[1])
	}
}

func TestRandom_NeverAnonymous(t *testing.T) {
	for i := 0; i < 100; i++ {
		require.NotEqual(t, Anonymous, Random())
	}
}
