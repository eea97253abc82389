// Package randomname generates human-readable display names for
// auto-provisioned guest accounts ("brisk-otter-4f21a0"). Names are not
// identifiers; the owning user record carries the real identity. The hex
// suffix keeps accidental collisions rare enough that the durable store's
// uniqueness check almost never has to retry.
package randomname

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var adjectives = []string{
	"amber", "bold", "brisk", "calm", "clever", "crimson", "daring", "dusty",
	"eager", "fabled", "gentle", "gilded", "hardy", "humble", "ivory", "jolly",
	"keen", "lively", "lucid", "mellow", "nimble", "opal", "patient", "quiet",
	"rustic", "sable", "silent", "sly", "spry", "stout", "swift", "tranquil",
	"umber", "vivid", "wandering", "wistful", "witty", "zesty",
}

var nouns = []string{
	"badger", "bittern", "caracal", "condor", "crane", "dormouse", "egret",
	"ermine", "falcon", "fennec", "gannet", "heron", "ibex", "jackdaw",
	"kestrel", "lark", "lemming", "linnet", "marten", "merlin", "mole",
	"osprey", "otter", "petrel", "pika", "plover", "quail", "raven", "shrew",
	"skylark", "stoat", "swift", "tern", "vole", "wagtail", "weasel", "wren",
}

// Generator produces display names from its own random source. It is safe
// for concurrent use only when each goroutine owns its Generator or callers
// serialize access; the auth service keeps one behind its own lock.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded from the runtime's random source.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Simple returns an "adjective-noun" name. The namespace is small, so use
// WithSuffix wherever the name must be unlikely to repeat.
func (g *Generator) Simple() string {
	return g.pick(adjectives) + "-" + g.pick(nouns)
}

// WithSuffix returns an "adjective-noun-xxxxxx" name where the suffix is a
// random 24-bit value in hex.
func (g *Generator) WithSuffix() string {
	return fmt.Sprintf("%s-%06x", g.Simple(), g.rnd.IntN(1<<24))
}

// IsGenerated reports whether name has the shape produced by WithSuffix.
// Used to tell auto-provisioned guest names from user-chosen ones.
func IsGenerated(name string) bool {
	parts := strings.Split(name, "-")
	if len(parts) != 3 || len(parts[2]) != 6 {
		return false
	}
	for _, r := range parts[2] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func (g *Generator) pick(words []string) string {
	return words[g.rnd.IntN(len(words))]
}
