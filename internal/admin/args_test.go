package admin

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Booking-Telegram-bot/internal/validate"
)

func TestCommandOf(t *testing.T) {
	tests := []struct {
		desc     string
		msg      tgbotapi.Message
		wantCmd  string
		wantArgs string
	}{
		{"text", tgbotapi.Message{Text: "/admin_order_status #12 paid"}, "admin_order_status", "#12 paid"},
		{"bot mention", tgbotapi.Message{Text: "/admin_orders@booking_bot"}, "admin_orders", ""},
		{"photo caption", tgbotapi.Message{Caption: "/admin_profile_photo 3"}, "admin_profile_photo", "3"},
		{"user command", tgbotapi.Message{Text: "/profiles"}, "", ""},
		{"plain text", tgbotapi.Message{Text: "hello"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cmd, args := commandOf(&tt.msg)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestParseProfileArgs(t *testing.T) {
	in, err := parseProfileArgs("Алиса | 22 | Люблю стратегии | 500 | 800 | 3000 | https://t.me/alice")
	require.NoError(t, err)
	assert.Equal(t, "Алиса", in.Name)
	require.NotNil(t, in.Age)
	assert.Equal(t, 22, *in.Age)
	assert.Equal(t, "Люблю стратегии", in.Description)
	assert.Equal(t, 500.0, in.AudioPrice)
	assert.Equal(t, 800.0, in.VideoPrice)
	require.NotNil(t, in.PrivatePrice)
	assert.Equal(t, 3000.0, *in.PrivatePrice)
	assert.Equal(t, "https://t.me/alice", in.ChannelLink)

	in, err = parseProfileArgs("Вика | - | - | 400 | 600")
	require.NoError(t, err)
	assert.Nil(t, in.Age)
	assert.Nil(t, in.PrivatePrice)
	assert.Empty(t, in.ChannelLink)

	for _, bad := range []string{
		"Вика | 20 | 400",
		" | 20 | - | 400 | 600",
		"Вика | 15 | - | 400 | 600",
		"Вика | 20 | - | дорого | 600",
		"Вика | 20 | - | NaN | Inf",
		"Вика | 20 | - | 400 | 600 | - | not a link",
	} {
		_, err := parseProfileArgs(bad)
		assert.Error(t, err, bad)
		assert.NotEmpty(t, validate.Message(err), bad)
	}
}

func TestProfileUpdate(t *testing.T) {
	fields, err := profileUpdate("audio", "650")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"audio_chat_price": 650.0}, fields)

	fields, err = profileUpdate("private", "-")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"private_price": nil}, fields)

	fields, err = profileUpdate("description", "Новое описание")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"description": "Новое описание"}, fields)

	_, err = profileUpdate("height", "170")
	assert.Error(t, err)
	_, err = profileUpdate("age", "12")
	assert.Error(t, err)
	_, err = profileUpdate("name", " ")
	assert.Error(t, err)
}

func TestParseOrderRef(t *testing.T) {
	ref, err := parseOrderRef("#15")
	require.NoError(t, err)
	assert.Equal(t, orderRef{number: "#15"}, ref)

	ref, err = parseOrderRef(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, orderRef{id: 7}, ref)

	for _, bad := range []string{"", "#", "#x", "0", "abc"} {
		_, err := parseOrderRef(bad)
		assert.Error(t, err, bad)
	}
}
