package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidatorsUsername(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	require.NoError(t, RegisterValidators(v))

	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{"john_doe", "", false},
		{"   ", "trimmed", true},
		{" ab ", "trimmed", true},
		{"admin\t", "trimmed", true},
		{"ab", "min", true},
	}
	for _, tt := range tests {
		err := v.Struct(RegisterRequest{Username: tt.name, Password: "secret1"})
		if !tt.wantErr {
			assert.NoError(t, err, "%q", tt.name)
			continue
		}
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs, "%q", tt.name)
		require.Len(t, verrs, 1)
		assert.Equal(t, tt.tag, verrs[0].Tag(), "%q", tt.name)
	}

	name := " user2"
	err := v.Struct(UpdateProfileRequest{Username: &name})
	assert.Error(t, err)
	assert.NoError(t, v.Struct(UpdateProfileRequest{}))
}
