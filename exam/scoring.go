package exam

import (
	"examprep/models"
	"examprep/utils"
)

// Score grades answers against questions position by position.
// Matching is exact string equality with no trimming or case folding, so the
// option label is part of the answer ("B. 4" != "4").
func Score(questions []models.Question, answers []string) models.ResultReport {
	report := models.ResultReport{
		TotalCount:        len(questions),
		PerQuestionDetail: make([]models.QuestionDetail, 0, len(questions)),
	}
	for i, q := range questions {
		userAnswer := models.Unanswered
		if i < len(answers) {
			userAnswer = answers[i]
		}
		isCorrect := userAnswer != models.Unanswered && userAnswer == q.Answer
		if isCorrect {
			report.CorrectCount++
		}
		report.PerQuestionDetail = append(report.PerQuestionDetail, models.QuestionDetail{
			QuestionText:     q.Text,
			UserAnswer:       userAnswer,
			Answered:         userAnswer != models.Unanswered,
			CorrectAnswer:    q.Answer,
			IsCorrect:        isCorrect,
			PresentedOptions: utils.CopyStrings(q.Options),
		})
	}
	report.Percentage = utils.RoundPercent(report.CorrectCount, report.TotalCount)
	report.Tier = Tier(report.Percentage)
	return report
}

// Result tiers by percentage
const (
	TierExcellent = "excellent" // 80 and above
	TierGood      = "good"      // 60 and above
	TierPoor      = "poor"
)

// Tier classifies a percentage for the results screen.
func Tier(percentage int) string {
	switch {
	case percentage >= 80:
		return TierExcellent
	case percentage >= 60:
		return TierGood
	default:
		return TierPoor
	}
}
