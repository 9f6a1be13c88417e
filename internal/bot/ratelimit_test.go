package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerUserAndCommand(t *testing.T) {
	r := NewRateLimiter()

	assert.False(t, r.IsLimited(1, "/orders"))
	assert.True(t, r.IsLimited(1, "/orders"))

	assert.False(t, r.IsLimited(2, "/orders"), "other users are not affected")
	assert.False(t, r.IsLimited(1, "/start"), "other commands are not affected")
}
