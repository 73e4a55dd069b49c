package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_CompressionRoundTrip(t *testing.T) {
	s, err := NewAuditStore(nil)
	require.NoError(t, err)

	small := []byte(`{"code":"ECO-001"}`)
	algo, payload := s.encode(small)
	assert.Equal(t, CompressionNone, algo)
	assert.Equal(t, small, payload)

	large := append([]byte(`{"notes":"`), bytes.Repeat([]byte("a"), DefaultCompressThreshold+1)...)
	large = append(large, []byte(`"}`)...)
	algo, payload = s.encode(large)
	require.Equal(t, CompressionZstd, algo)
	assert.Less(t, len(payload), len(large))

	decoded, err := s.decode(algo, nil, payload)
	require.NoError(t, err)
	assert.Equal(t, large, []byte(decoded))
}

func TestAuditStore_DecodePlain(t *testing.T) {
	s, err := NewAuditStore(nil)
	require.NoError(t, err)

	out, err := s.decode(CompressionNone, []byte(`{}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}
