package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Animals":          "animals",
		"  Home & Garden ": "home-garden",
		"Über Café":        "über-café",
		"a--b__c":          "a-b-c",
		"!!!":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestCleanInput(t *testing.T) {
	got, err := CleanInput([]byte("\xEF\xBB\xBF“hello” — world"), "test")
	require.NoError(t, err)
	assert.Equal(t, "\"hello\" -- world", got)

	got, err = CleanInput([]byte("bad \xff byte"), "test")
	require.NoError(t, err)
	assert.Equal(t, "bad � byte", got)

	_, err = CleanInput([]byte("abc\x00def"), "blob")
	assert.Error(t, err)
}

func TestIsLikelyBinary(t *testing.T) {
	assert.False(t, IsLikelyBinary([]byte("plain text")))
	assert.True(t, IsLikelyBinary([]byte{'a', 0, 'b'}))

	late := make([]byte, 600)
	for i := range late {
		late[i] = 'x'
	}
	late[599] = 0
	assert.False(t, IsLikelyBinary(late))
}
