// Package clix holds flag parsing shared by the CLI commands.
package clix

import (
	"strings"

	"github.com/spf13/pflag"
)

const defaultLimit = 20

type PaginationParams struct {
	Limit  int
	Offset int
}

// AddPaginationFlags registers --limit and --offset.
func AddPaginationFlags(flags *pflag.FlagSet) {
	flags.Int("limit", defaultLimit, "Maximum number of items to show")
	flags.Int("offset", 0, "Number of items to skip")
}

func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, err := flags.GetInt("limit")
	if err != nil {
		return PaginationParams{}, err
	}
	offset, err := flags.GetInt("offset")
	if err != nil {
		return PaginationParams{}, err
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// ParseTags reads the comma separated --tags flag.
func ParseTags(flags *pflag.FlagSet) ([]string, error) {
	tagsStr, err := flags.GetString("tags")
	if err != nil {
		return nil, err
	}
	return SplitList(tagsStr), nil
}

// SplitList splits a comma separated list, trimming items and dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
