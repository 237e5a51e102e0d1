package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfileRequestCarriesPicture(t *testing.T) {
	body := `{"name":"Dana","profilePicture":"/uploads/dana.png"}`

	var req UpdateProfileRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NotNil(t, req.ProfilePicture)
	assert.Equal(t, "/uploads/dana.png", *req.ProfilePicture)
	assert.NoError(t, Validate(req))
}
