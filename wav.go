package wavio

import (
	"math"
	"time"
)

func framesDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}

	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func framesFromDuration(dur time.Duration, sampleRate int) int64 {
	if sampleRate <= 0 || dur <= 0 {
		return 0
	}

	return int64(math.Floor(dur.Seconds() * float64(sampleRate)))
}
