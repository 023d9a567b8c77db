package qrimage

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder(256)

	dataURL, err := enc.Encode("encrypted-payload-token")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	raw := strings.TrimPrefix(dataURL, "data:image/png;base64,")
	png, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, png[:4])
}

func TestEncoder_DefaultSize(t *testing.T) {
	enc := NewEncoder(0)

	dataURL, err := enc.Encode("payload")
	require.NoError(t, err)
	assert.NotEmpty(t, dataURL)
}

func TestEncoder_EmptyPayload(t *testing.T) {
	enc := NewEncoder(256)

	_, err := enc.Encode("")
	assert.Error(t, err)
}
