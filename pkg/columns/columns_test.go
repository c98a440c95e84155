package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/errors"
)

func TestDefault(t *testing.T) {
	cols := Default()
	require.Len(t, cols, 8)
	assert.Equal(t, "email", cols[0].ID)
	assert.Equal(t, "highest qualification", cols[4].Header())
	assert.Equal(t, "created_at", cols[7].ID)
	assert.NoError(t, Validate(cols))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		specs    []string
		expected []Column
		wantErr  bool
	}{
		{
			name:     "id only",
			specs:    []string{"email"},
			expected: []Column{{ID: "email", Title: "email"}},
		},
		{
			name:     "id and title",
			specs:    []string{"email:E-mail", " name : Full Name "},
			expected: []Column{{ID: "email", Title: "E-mail"}, {ID: "name", Title: "Full Name"}},
		},
		{
			name:    "empty id",
			specs:   []string{":Title"},
			wantErr: true,
		},
		{
			name:    "duplicate id",
			specs:   []string{"email", "email:Mail"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := Parse(tt.specs...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cols)
		})
	}
}

func TestColumnString(t *testing.T) {
	assert.Equal(t, "email", Column{ID: "email"}.String())
	assert.Equal(t, "email", Column{ID: "email", Title: "email"}.String())
	assert.Equal(t, "email:Mail", Column{ID: "email", Title: "Mail"}.String())
}

func TestHeadersAndValidate(t *testing.T) {
	assert.Equal(t, []string{"email", "Mail"}, Headers([]Column{{ID: "email"}, {ID: "m", Title: "Mail"}}))
	assert.Error(t, Validate(nil))
	assert.Error(t, Validate([]Column{{Title: "x"}}))
	assert.True(t, errors.IsValidationError(Validate([]Column{{ID: "a"}, {ID: "a", Title: "A"}})))
}
