package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeystrokes(t *testing.T) {
	got := keystrokes([]string{"hi yo", "кр"})
	assert.Equal(t, []string{"h", "hi", "hi ", "hi y", "hi yo", "к", "кр"}, got)
}

func TestPercentile(t *testing.T) {
	assert.Zero(t, percentile(nil, 50))
}
