package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"villa/shared/password"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("hunter2hunter2")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.NoError(t, password.Verify("hunter2hunter2", hash))
	assert.ErrorIs(t, password.Verify("wrong", hash), password.ErrInvalidPassword)
}

func TestHashEmptyPassword(t *testing.T) {
	_, err := password.Hash("")
	assert.Error(t, err)
}

func TestVerifyEmptyInputs(t *testing.T) {
	assert.ErrorIs(t, password.Verify("", "hash"), password.ErrInvalidPassword)
	assert.ErrorIs(t, password.Verify("pw", ""), password.ErrInvalidPassword)
}
