package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferenceFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		ref, err := GenerateReference()
		require.NoError(t, err)
		assert.Len(t, ref, 6)
		for _, r := range ref {
			assert.True(t, strings.ContainsRune(referenceAlphabet, r),
				"reference %q contains %q outside the alphabet", ref, r)
		}
	}
}

func TestGenerateReferenceExcludesAmbiguousCharacters(t *testing.T) {
	for _, forbidden := range "0O1I" {
		assert.False(t, strings.ContainsRune(referenceAlphabet, forbidden))
	}
}

func TestGenerateReferenceVariance(t *testing.T) {
	// Not a uniqueness guarantee, only a sanity check that the generator
	// is not stuck.
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		ref, err := GenerateReference()
		require.NoError(t, err)
		seen[ref] = struct{}{}
	}
	assert.Greater(t, len(seen), 90)
}
