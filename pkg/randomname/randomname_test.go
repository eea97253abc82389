package randomname_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsite/server/pkg/randomname"
)

var (
	simpleRe = regexp.MustCompile(`^[a-z]+-[a-z]+$`)
	suffixRe = regexp.MustCompile(`^[a-z]+-[a-z]+-[0-9a-f]{6}$`)
)

func TestSimple(t *testing.T) {
	g := randomname.New()
	for range 100 {
		assert.Regexp(t, simpleRe, g.Simple())
	}
}

func TestWithSuffix(t *testing.T) {
	g := randomname.New()
	for range 100 {
		name := g.WithSuffix()
		require.Regexp(t, suffixRe, name)
		assert.True(t, randomname.IsGenerated(name))
	}
}

func TestWithSuffix_RarelyCollides(t *testing.T) {
	g := randomname.New()
	seen := make(map[string]struct{}, 1000)
	collisions := 0
	for range 1000 {
		name := g.WithSuffix()
		if _, dup := seen[name]; dup {
			collisions++
		}
		seen[name] = struct{}{}
	}
	assert.LessOrEqual(t, collisions, 2)
}

func TestIsGenerated(t *testing.T) {
	assert.False(t, randomname.IsGenerated("diego"))
	assert.False(t, randomname.IsGenerated("brisk-otter"))
	assert.False(t, randomname.IsGenerated("brisk-otter-xyzxyz"))
	assert.False(t, randomname.IsGenerated("brisk-otter-12345"))
	assert.True(t, randomname.IsGenerated("brisk-otter-4f21a0"))
}
