package database

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name    string
		version uint
		dirty   bool
		err     error
		wantErr bool
	}{
		{"current", SchemaVersion, false, nil, false},
		{"dirty", SchemaVersion, true, nil, true},
		{"behind", SchemaVersion - 1, false, nil, true},
		{"nothing applied", 0, false, migrate.ErrNilVersion, true},
		{"read failure", 0, false, errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSchema(tt.version, tt.dirty, tt.err)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkSchema() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
