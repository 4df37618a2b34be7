package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Library store errors
	ErrStoreUnavailable = fmt.Errorf("library store unavailable")

	// Export errors
	ErrNoSongs           = fmt.Errorf("no songs selected")
	ErrSourceMissing     = fmt.Errorf("source file missing")
	ErrDestinationCreate = fmt.Errorf("failed to create export destination")

	// Tag and artwork errors
	ErrTagRead         = fmt.Errorf("failed to read tags")
	ErrEmbed           = fmt.Errorf("failed to embed artwork")
	ErrCoverNotFound   = fmt.Errorf("cover not found")
	ErrUnsupportedType = fmt.Errorf("unsupported container format")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
