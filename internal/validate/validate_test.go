package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"2", 2, false},
		{"1,5", 1.5, false},
		{"24", 24, false},
		{"0.5", 0, true},
		{"25", 0, true},
		{"два", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"+Inf", 0, true},
	}
	for _, tt := range tests {
		got, err := Duration(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			assert.NotEmpty(t, Message(err))
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestParticipants(t *testing.T) {
	n, err := Participants(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, raw := range []string{"0", "51", "-1", "2.5", ""} {
		_, err := Participants(raw)
		assert.Error(t, err, raw)
	}
}

func TestPriceAndAge(t *testing.T) {
	_, err := Price("1 500")
	assert.Error(t, err)
	p, err := Price("1500,50")
	require.NoError(t, err)
	assert.Equal(t, 1500.5, p)
	_, err = Price("-1")
	assert.Error(t, err)
	for _, raw := range []string{"NaN", "Inf", "+Inf", "-Inf", "infinity"} {
		_, err = Price(raw)
		assert.Error(t, err, raw)
		assert.NotEmpty(t, Message(err), raw)
	}

	a, err := Age("21")
	require.NoError(t, err)
	assert.Equal(t, 21, a)
	_, err = Age("17")
	assert.Error(t, err)
}

func TestTimeOfDay(t *testing.T) {
	h, m, err := TimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	for _, raw := range []string{"24:00", "12:60", "1230", "aa:bb", "12:30:00"} {
		_, _, err := TimeOfDay(raw)
		assert.Error(t, err, raw)
	}
}

func TestDateAndCombine(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	d, err := Date("05.03.2027", loc)
	require.NoError(t, err)
	at := Combine(d, 19, 30, loc)
	assert.Equal(t, time.Date(2027, 3, 5, 16, 30, 0, 0, time.UTC), at.UTC())

	_, err = Date("2027-03-05", loc)
	assert.Error(t, err)
}

func TestMeetingTime(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, MeetingTime(now.Add(2*time.Hour), now))
	assert.Error(t, MeetingTime(now.Add(-time.Minute), now), "past")
	assert.Error(t, MeetingTime(now.Add(30*time.Minute), now), "less than an hour ahead")
	assert.Error(t, MeetingTime(now.AddDate(0, 0, 91), now), "too far ahead")
}

func TestProfile(t *testing.T) {
	age := 22
	assert.NoError(t, Profile(ProfileInput{Name: "Алиса", Age: &age, AudioPrice: 500, VideoPrice: 800, ChannelLink: "https://t.me/alice"}))

	bad := 16
	err := Profile(ProfileInput{Age: &bad, AudioPrice: -1, ChannelLink: "not a link"})
	require.Error(t, err)
	msg := Message(err)
	assert.Contains(t, msg, "имя")
	assert.Contains(t, msg, "возраст")
	assert.Contains(t, msg, "цена аудио")
	assert.Contains(t, msg, "ссылка на канал")
}
