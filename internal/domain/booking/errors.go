package booking

import "errors"

// Store-level sentinels. Repositories translate driver errors into these so
// use cases never inspect gorm or pgx types.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
)
