package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsPatchValidate(t *testing.T) {
	intp := func(n int) *int { return &n }
	sizep := func(n int64) *int64 { return &n }

	tests := []struct {
		name  string
		patch SettingsPatch
		ok    bool
	}{
		{"empty", SettingsPatch{}, true},
		{"one column", SettingsPatch{GridColumns: intp(1)}, true},
		{"two columns", SettingsPatch{GridColumns: intp(2)}, true},
		{"zero columns", SettingsPatch{GridColumns: intp(0)}, false},
		{"three columns", SettingsPatch{GridColumns: intp(3)}, false},
		{"zero budget", SettingsPatch{MaxCacheSize: sizep(0)}, true},
		{"negative budget", SettingsPatch{MaxCacheSize: sizep(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSettings)
			}
		})
	}
}
