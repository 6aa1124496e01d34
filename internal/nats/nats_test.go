package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Unreachable(t *testing.T) {
	n, err := Connect("nats://127.0.0.1:1", "secret", "test")
	require.Error(t, err)
	assert.Nil(t, n)
}

func TestClose_NilSafe(t *testing.T) {
	var n *Nats
	n.Close()
	(&Nats{}).Close()
}
