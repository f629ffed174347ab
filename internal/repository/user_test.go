package repository

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "duplicate username key",
			err: &mysql.MySQLError{
				Number:  1062,
				Message: "Duplicate entry 'reader' for key 'users.username'",
			},
			want: ErrDuplicateUsername,
		},
		{
			name: "duplicate email key",
			err: &mysql.MySQLError{
				Number:  1062,
				Message: "Duplicate entry 'reader@example.com' for key 'users.email'",
			},
			want: ErrDuplicateEmail,
		},
		{
			name: "unrelated mysql error",
			err: &mysql.MySQLError{
				Number:  1146,
				Message: "Table 'bookworm.users' doesn't exist",
			},
			want: nil,
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duplicateKeyError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("duplicateKeyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
