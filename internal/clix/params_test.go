package clix

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddPaginationFlags(flags)
	require.NoError(t, flags.Parse([]string{"--limit=0", "--offset=-3"}))

	p, err := ParsePagination(flags)
	require.NoError(t, err)
	assert.Equal(t, PaginationParams{Limit: 20, Offset: 0}, p)

	require.NoError(t, flags.Parse([]string{"--limit", "5", "--offset", "10"}))
	p, err = ParsePagination(flags)
	require.NoError(t, err)
	assert.Equal(t, PaginationParams{Limit: 5, Offset: 10}, p)
}

func TestParsePagination_MissingFlags(t *testing.T) {
	_, err := ParsePagination(pflag.NewFlagSet("empty", pflag.ContinueOnError))
	assert.Error(t, err)
}

func TestParseTags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("tags", "", "")
	require.NoError(t, flags.Parse([]string{"--tags", " go, ,Rust ,"}))

	tags, err := ParseTags(flags)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "Rust"}, tags)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
}
