package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeServerKeyMatchesRawURLEncoding(t *testing.T) {
	keys := []string{
		"BEl62iUYgUivxIkv69yViEuiBIa-Ib9-SkvMeAtA3LFgDzkrxZJjSgSnfckjBJuBkr3qBUYIHBQFLXYp5Nksh8U",
		"AAAA",
		"_-_-",
		"QQ",
	}
	for _, key := range keys {
		want, err := base64.RawURLEncoding.DecodeString(key)
		require.NoError(t, err, key)

		got, err := DecodeServerKey(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
}

func TestDecodeServerKeyRejectsGarbage(t *testing.T) {
	_, err := DecodeServerKey("not a base64 key!!")
	assert.Error(t, err)
}
