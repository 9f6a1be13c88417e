package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		desc         string
		rate         float64
		duration     float64
		participants int
		want         Price
	}{
		{"three participants", 500, 2, 3, Price{Base: 1000, Additional: 1000, Total: 2000}},
		{"single participant", 600, 1, 1, Price{Base: 600, Additional: 0, Total: 600}},
		{"two participants", 700, 1.5, 2, Price{Base: 1050, Additional: 525, Total: 1575}},
		{"zero rate", 0, 3, 4, Price{}},
		{"zero duration", 800, 0, 2, Price{}},
		{"rounding", 10.004, 1, 1, Price{Base: 10, Total: 10}},
		{"cent rounding", 0.15, 1, 2, Price{Base: 0.15, Additional: 0.08, Total: 0.23}},
		{"cent rounding four participants", 0.31, 1, 4, Price{Base: 0.31, Additional: 0.47, Total: 0.78}},
		{"participants below one", 100, 1, 0, Price{Base: 100, Total: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.rate, tt.duration, tt.participants))
		})
	}
}

func TestComputeTotalIsSumOfParts(t *testing.T) {
	for _, rate := range []float64{0, 0.15, 0.31, 0.35, 1, 99.99, 450, 1234.56} {
		for _, duration := range []float64{0, 0.5, 1, 2, 7.5, 24} {
			for participants := 1; participants <= 6; participants++ {
				p := Compute(rate, duration, participants)
				assert.Equal(t, round2(p.Base+p.Additional), p.Total, "rate=%v duration=%v participants=%d", rate, duration, participants)
				if participants == 1 {
					assert.Zero(t, p.Additional)
				}
			}
		}
	}
}

func TestForFormat(t *testing.T) {
	private := 3000.0
	rates := Rates{Audio: 500, Video: 800, Private: &private}

	audio := ForFormat(rates, FormatAudio, 2, 3)
	assert.Equal(t, Price{Base: 1000, Additional: 1000, Total: 2000}, audio.Price)
	assert.Equal(t, 500.0, audio.Rate)

	video := ForFormat(rates, FormatVideo, 1, 1)
	assert.Equal(t, Price{Base: 800, Total: 800}, video.Price)

	flat := ForFormat(rates, FormatPrivate, 5, 4)
	assert.Equal(t, Price{Base: 3000, Total: 3000}, flat.Price)
	assert.Equal(t, 1.0, flat.DurationHours)

	none := ForFormat(Rates{Audio: 1, Video: 2}, FormatPrivate, 1, 1)
	assert.Equal(t, Price{}, none.Price)
}

func TestFormat(t *testing.T) {
	assert.True(t, FormatAudio.Valid())
	assert.True(t, FormatPrivate.Valid())
	assert.False(t, Format("phone").Valid())
	assert.Equal(t, "Видео-чат", FormatVideo.Title())
	assert.Equal(t, 250.0, RatePerHour(500, 2))
	assert.Zero(t, RatePerHour(500, 0))
}
