package game

// Outcome is what the scoring rules decide for one resolved attempt.
type Outcome struct {
	ItemID     string `json:"itemId"`
	Correct    bool   `json:"correct"`
	TimedOut   bool   `json:"timedOut,omitempty"`
	ScoreDelta int    `json:"scoreDelta"`
	LifeDelta  int    `json:"lifeDelta,omitempty"`
	Streak     int    `json:"streak"`

	// Plate building
	Healthy   int  `json:"healthy,omitempty"`
	Unhealthy int  `json:"unhealthy,omitempty"`
	Bonus     int  `json:"bonus,omitempty"`
	Perfect   bool `json:"perfect,omitempty"`
}

// ApplyScore adds delta to score and clamps the result at zero.
func ApplyScore(score, delta int) int {
	score += delta
	if score < 0 {
		return 0
	}
	return score
}

// StreakMultiplier is the factor a correct answer's points are scaled by for
// the streak held before the answer.
func StreakMultiplier(streak int) int {
	if streak < 0 {
		streak = 0
	}
	return 1 + streak/2
}

// ScoreBinary scores a right-or-wrong answer: a trivia choice or a sorting
// drop zone.
func (r Rules) ScoreBinary(item PlayItem, a Attempt, streak int) Outcome {
	var correct bool
	if len(item.Choices) > 0 {
		correct = a.Choice != nil && *a.Choice == item.AnswerIndex
	} else {
		correct = a.Zone == item.TypeTag
	}

	out := Outcome{ItemID: item.ID, Correct: correct}
	if correct {
		points := r.BasePoints
		if item.Points > 0 {
			points = item.Points
		}
		if r.StreakMultiplier {
			points *= StreakMultiplier(streak)
		}
		out.ScoreDelta = points
		out.Streak = streak + 1
		return out
	}

	out.ScoreDelta = -r.Penalty
	if r.Lives > 0 {
		out.LifeDelta = -1
	}
	return out
}

// ScorePlate scores a whole plate-building round. The returned delta is meant
// to be applied once, so clamping happens per round rather than per food.
func (r Rules) ScorePlate(item PlayItem, selected []string, streak int) Outcome {
	out := Outcome{ItemID: item.ID}
	expected := item.ExpectedSet()

	seen := make(map[string]bool, len(selected))
	extras := 0
	hits := 0
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true

		opt, ok := item.option(id)
		if !ok {
			extras++
			continue
		}
		if opt.Healthy {
			out.Healthy++
		} else {
			out.Unhealthy++
		}
		if expected[id] {
			hits++
		} else {
			extras++
		}
	}

	out.ScoreDelta = r.PointsPerHealthy*out.Healthy - r.PenaltyPerUnhealthy*out.Unhealthy
	out.Perfect = extras == 0 && hits == len(expected)
	if out.Perfect {
		out.Bonus = r.PerfectBonus
		out.ScoreDelta += r.PerfectBonus
		out.Correct = true
		out.Streak = streak + 1
	}
	return out
}

// ScoreMatch scores the comparison of two flipped memory cards. A mismatch
// costs a little but never breaks the streak.
func (r Rules) ScoreMatch(round int, first, second Card, streak int) Outcome {
	out := Outcome{ItemID: first.PairID, Streak: streak}
	if first.PairID == second.PairID && first.Side != second.Side {
		out.Correct = true
		out.ScoreDelta = r.PointsForRound(round)
		out.Streak = streak + 1
		return out
	}
	out.ScoreDelta = -r.MismatchPenalty
	return out
}

// ScoreTimeout is the implicit attempt recorded when the play clock runs out
// with nothing pending.
func (r Rules) ScoreTimeout(item PlayItem) Outcome {
	out := Outcome{ItemID: item.ID, TimedOut: true}
	if r.TimeoutCostsLife {
		out.LifeDelta = -1
	}
	return out
}
