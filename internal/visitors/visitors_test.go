package visitors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvisionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := ProvisionID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "provisioned IDs must not repeat")
		seen[id] = true
	}
}

func TestAliasStable(t *testing.T) {
	id := "9f2c1d34-5ab6-4c78-9d01-2e3f4a5b6c7d"
	assert.Equal(t, Alias(id), Alias(id))
	assert.NotEmpty(t, Alias(id))
}

func TestAliasFormat(t *testing.T) {
	alias := Alias("some-visitor")
	assert.Regexp(t, `^[A-Z][a-z]+ [A-Z][a-z]+$`, alias)
}
