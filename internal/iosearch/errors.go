package iosearch

import (
	"fmt"

	"github.com/clindict/omopstat/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for a search attempted without a
// database connection.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Search attempted without database connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// QueryError creates an error for a failed search query.
func QueryError(table string, err error) error {
	return &gn.Error{
		Code: errcode.SearchQueryError,
		Msg:  "Search query against table <em>%s</em> failed",
		Vars: []any{table},
		Err:  fmt.Errorf("search query on %s: %w", table, err),
	}
}
