package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
)

func TestSignupUserID(t *testing.T) {
	id := uuid.MustParse("6f1c1e1e-2b7a-4c39-9d4e-0a1b2c3d4e5f")

	tests := []struct {
		name string
		body string
		want uuid.UUID
	}{
		{
			name: "confirmation pending",
			body: `{"id":"6f1c1e1e-2b7a-4c39-9d4e-0a1b2c3d4e5f","email":"ana@campus.edu"}`,
			want: id,
		},
		{
			name: "autoconfirmed session",
			body: `{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,
				"user":{"id":"6f1c1e1e-2b7a-4c39-9d4e-0a1b2c3d4e5f","email":"ana@campus.edu"}}`,
			want: id,
		},
		{
			name: "no user",
			body: `{}`,
			want: uuid.Nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res types.SignupResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &res))
			assert.Equal(t, tt.want, signupUserID(&res))
		})
	}
}
