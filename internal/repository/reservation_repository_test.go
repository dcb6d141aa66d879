package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestWrapLockConflict(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	assert.ErrorIs(t, wrapLockConflict(deadlock), ErrTxConflict)

	timeout := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	assert.ErrorIs(t, wrapLockConflict(timeout), ErrTxConflict)

	// Wrapped driver errors are still recognized.
	assert.ErrorIs(t, wrapLockConflict(fmt.Errorf("commit: %w", deadlock)), ErrTxConflict)

	// Other driver errors pass through untouched.
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.Equal(t, error(dup), wrapLockConflict(dup))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, wrapLockConflict(plain))
}
