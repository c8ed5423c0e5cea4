package common

// AuthorizationHeader carries the bearer access token on API requests.
const AuthorizationHeader = "Authorization"

// ScoreMin and ScoreMax bound the mood score domain. Values outside the
// range are clamped at presentation sites, never stored.
const (
	ScoreMin = 1
	ScoreMax = 5
)

// ClampScore forces a mood score into [ScoreMin, ScoreMax].
func ClampScore(score int) int {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}
