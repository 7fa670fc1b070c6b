package service_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
)

func TestDecodeBase64Image(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))

	data, ext, err := service.DecodeBase64Image("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	assert.Equal(t, []byte("fake image bytes"), data)
}

func TestDecodeBase64ImageRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"no prefix":       "just a string",
		"bad media type":  "data:text/plain;base64,aGVsbG8=",
		"bad extension":   "data:image/bmp;base64,aGVsbG8=",
		"bad base64":      "data:image/png;base64,!!!not-base64!!!",
		"missing payload": "data:image/png;base64,",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := service.DecodeBase64Image(input)
			assert.ErrorIs(t, err, service.ErrInvalidImageData)
		})
	}
}
