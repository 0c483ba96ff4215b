package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"user":"boris","message":"sup","message_type":"text"}`))
	require.NoError(t, err)
	assert.Equal(t, "boris", f.User)
	assert.Equal(t, "sup", f.Message)
	assert.Equal(t, "text", f.MessageType)
}

func TestDecodeFrameDefaultsType(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"user":"boris","message":"sup"}`))
	require.NoError(t, err)
	assert.Equal(t, "text", f.MessageType)
}

func TestDecodeFrameRejectsEmptyMessage(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"user":"boris","message":"  "}`))
	assert.ErrorIs(t, err, ErrBadFrame)

	_, err = DecodeFrame([]byte(`{"user":"boris"}`))
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	_, err := DecodeFrame([]byte(`not json`))
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestDecodeFrameKeepsUnknownSenderEmpty(t *testing.T) {
	// пустой user валиден: решение о заглушке принимает сессия
	f, err := DecodeFrame([]byte(`{"message":"hi"}`))
	require.NoError(t, err)
	assert.Empty(t, f.User)
}
