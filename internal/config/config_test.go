package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusFlow_Default(t *testing.T) {
	transitions, err := ParseStatusFlow("applied>shortlisted,applied>rejected")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"shortlisted", "rejected"}, transitions["applied"])
	assert.Empty(t, transitions["shortlisted"])
	assert.Empty(t, transitions["rejected"])
}

func TestParseStatusFlow_TrimsWhitespace(t *testing.T) {
	transitions, err := ParseStatusFlow(" applied > shortlisted , shortlisted > rejected ")
	require.NoError(t, err)

	assert.Equal(t, []string{"shortlisted"}, transitions["applied"])
	assert.Equal(t, []string{"rejected"}, transitions["shortlisted"])
}

func TestParseStatusFlow_Malformed(t *testing.T) {
	cases := []string{
		"applied",
		"applied>",
		">shortlisted",
		"applied>shortlisted>rejected",
		"",
		",,",
	}
	for _, flow := range cases {
		_, err := ParseStatusFlow(flow)
		assert.Error(t, err, "flow %q should be rejected", flow)
	}
}

func TestTransitionAllowed(t *testing.T) {
	transitions, err := ParseStatusFlow("applied>shortlisted,applied>rejected")
	require.NoError(t, err)
	cfg := &Config{StatusTransitions: transitions}

	assert.True(t, cfg.TransitionAllowed("applied", "shortlisted"))
	assert.True(t, cfg.TransitionAllowed("applied", "rejected"))

	assert.False(t, cfg.TransitionAllowed("shortlisted", "applied"), "transitions are one-directional")
	assert.False(t, cfg.TransitionAllowed("rejected", "shortlisted"))
	assert.False(t, cfg.TransitionAllowed("applied", "applied"))
	assert.False(t, cfg.TransitionAllowed("unknown", "shortlisted"))
}
