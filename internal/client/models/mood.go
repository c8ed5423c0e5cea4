package models

import "github.com/moodmapper/moodmapper/internal/common"

var (
	moodEmojis   = []string{"😞", "😕", "😐", "🙂", "😄"}
	moodFeelings = []string{"Sad", "Unhappy", "Neutral", "Happy", "Euphoric"}
	moodColours  = []string{"red", "yellow", "orange", "green", "blue"}
)

// Emoji returns the emoji for a mood score. Out-of-range scores clamp to
// the nearest valid one.
func Emoji(score int) string {
	return moodEmojis[common.ClampScore(score)-1]
}

// Feeling returns the feeling word for a mood score, clamped like Emoji.
func Feeling(score int) string {
	return moodFeelings[common.ClampScore(score)-1]
}

// ColourName returns the display colour name for a mood score, clamped
// like Emoji.
func ColourName(score int) string {
	return moodColours[common.ClampScore(score)-1]
}
