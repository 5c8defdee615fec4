package cmd

import (
	"io"
	"testing"

	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestUnknownFlagIsInvalidArgument(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--no-such-flag"})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, contract.ErrInvalidArgument)
	assert.Equal(t, 2, contract.ExitCodeFor(err))
}

func TestRefArgs(t *testing.T) {
	assert.NoError(t, refArgs(nil, nil))
	assert.NoError(t, refArgs(nil, []string{"main", "feature/login-fix"}))

	err := refArgs(nil, []string{"main"})
	assert.ErrorIs(t, err, contract.ErrInvalidArgument)
}
