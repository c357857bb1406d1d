package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []string{"*/30 * * * *", "0 6 * * *", "0 */6 * * *", "30 9 * * 1-5", "0 0 1 * *"}
	for _, schedule := range valid {
		assert.NoError(t, ValidateCronSchedule(schedule), schedule)
	}

	invalid := []string{"", "every hour", "60 * * * *", "0 0 6 * * *", "* * *"}
	for _, schedule := range invalid {
		err := ValidateCronSchedule(schedule)
		assert.Error(t, err, schedule)
		assert.Contains(t, err.Error(), "invalid cron schedule")
	}
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "Europe/Chisinau", "Europe/Moscow", "Asia/Tokyo"} {
		assert.NoError(t, ValidateTimezone(tz), tz)
	}
	for _, tz := range []string{"", "Mars/Olympus", "GMT+25"} {
		err := ValidateTimezone(tz)
		assert.Error(t, err, tz)
		assert.Contains(t, err.Error(), "invalid timezone")
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		min, max time.Duration
		wantErr  string
	}{
		{"inside", 10 * time.Minute, time.Minute, time.Hour, ""},
		{"at min", time.Minute, time.Minute, time.Hour, ""},
		{"at max", time.Hour, time.Minute, time.Hour, ""},
		{"below", time.Second, time.Minute, time.Hour, "below minimum"},
		{"above", 2 * time.Hour, time.Minute, time.Hour, "exceeds maximum"},
		{"inverted range", time.Minute, time.Hour, time.Minute, "invalid range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.d, tt.min, tt.max)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateIntRange(t *testing.T) {
	tests := []struct {
		name     string
		v        int
		min, max int
		wantErr  string
	}{
		{"inside", 20, 1, 100, ""},
		{"at min", 1, 1, 100, ""},
		{"at max", 65535, 1024, 65535, ""},
		{"below", 0, 1, 100, "below minimum"},
		{"above", 70000, 1024, 65535, "exceeds maximum"},
		{"inverted range", 5, 10, 1, "invalid range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIntRange(tt.v, tt.min, tt.max)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.NoError(t, ValidatePositiveDuration(10*time.Second))
	assert.ErrorContains(t, ValidatePositiveDuration(0), "must be positive")
	assert.ErrorContains(t, ValidatePositiveDuration(-time.Second), "must be positive")
}

func TestValidateRatio(t *testing.T) {
	for _, v := range []float64{0, 0.25, 1} {
		assert.NoError(t, ValidateRatio(v))
	}
	for _, v := range []float64{-0.1, 1.01} {
		assert.Error(t, ValidateRatio(v))
	}
}

func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://point.md/ru/rss/novosti/", false},
		{"http://localhost:9200", false},
		{"ftp://example.com/feed", true},
		{"point.md/rss", true},
		{"https://", true},
		{"http://[::1", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateHTTPURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
