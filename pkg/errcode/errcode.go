package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableExistsCheckError
	DBBadDriverError

	// Stats errors
	StatsNoTablesError
	StatsConceptQueryError
	StatsTotalsQueryError
	StatsSinkError
	StatsCancelledError

	// Compare errors
	CompareParseError

	// Search errors
	SearchQueryError
	SearchInputError
)
