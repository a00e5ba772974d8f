package service

import "quiz-session-service/internal/models"

// CalculateScore returns the percentage of recorded answers that were
// correct, in [0, 100]. An empty answer set scores exactly 0.
//
// Submission, status reporting and completion all derive their score
// through this one function so the three observation points can never
// disagree for the same answer set.
func CalculateScore(answers []models.Answer) float64 {
	if len(answers) == 0 {
		return 0.0
	}
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(answers)) * 100
}
