package forecast

import "fmt"

// BestDay identifies the highest-scoring day in a window.
type BestDay struct {
	DayIndex int `json:"dayIndex"`
	Score    int `json:"score"`
}

// PickBestDay returns the index and score of the best day. With skipFirst the
// first entry (today) is not a candidate. Ties keep the earliest day.
//
// When there is no candidate the zero BestDay is returned together with an
// error wrapping ErrInvalidInput; callers that only need a safe default may
// ignore the error.
func PickBestDay(days []HikingAssessment, skipFirst bool) (BestDay, error) {
	start := 0
	if skipFirst {
		start = 1
	}
	if len(days) <= start {
		return BestDay{}, fmt.Errorf("%w: need more than %d days, got %d", ErrInvalidInput, start, len(days))
	}

	best := BestDay{DayIndex: start, Score: days[start].Score}
	for i := start + 1; i < len(days); i++ {
		if days[i].Score > best.Score {
			best = BestDay{DayIndex: i, Score: days[i].Score}
		}
	}
	return best, nil
}
