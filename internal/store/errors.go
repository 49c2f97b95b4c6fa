package store

import "strings"

// isBusyError reports a SQLITE_BUSY error, raised while another connection
// holds the write lock.
func isBusyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLITE_BUSY")
}

// isLockedError reports the "database is locked" form of the same condition.
func isLockedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// isConflictError reports either concurrency error; both are worth a retry.
func isConflictError(err error) bool {
	return isBusyError(err) || isLockedError(err)
}
