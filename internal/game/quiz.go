package game

import (
	"time"

	"trivia-arena/internal/config"
)

// QuizOutcome is the result of one answered trivia question, reported by
// the quiz service.
type QuizOutcome struct {
	PlayerID   string        `json:"playerId"`
	QuestionID string        `json:"questionId"`
	Correct    bool          `json:"correct"`
	AnswerTime time.Duration `json:"answerTimeMs"`
	Allotted   time.Duration `json:"allottedMs"`
}

// QuizRewards converts quiz outcomes into combat buffs. Fast correct
// answers earn a damage boost, slower correct answers a speed boost, and
// incorrect answers a vulnerability debuff.
type QuizRewards struct {
	cfg   config.BuffConfig
	buffs *BuffSystem
}

func NewQuizRewards(cfg config.BuffConfig, buffs *BuffSystem) *QuizRewards {
	return &QuizRewards{cfg: cfg, buffs: buffs}
}

// Resolve applies the buff the outcome earns. Outcomes for unknown or
// kicked players are dropped by the caller before reaching here.
func (q *QuizRewards) Resolve(now time.Time, p *PlayerState, out QuizOutcome) {
	if !out.Correct {
		q.buffs.Apply(now, p, BuffVulnerability, q.cfg.VulnerabilityValue, q.cfg.VulnerabilityTime, "quiz:"+out.QuestionID)
		return
	}
	if out.Allotted > 0 && out.AnswerTime <= out.Allotted/3 {
		q.buffs.Apply(now, p, BuffDamageBoost, q.cfg.DamageBoostValue, q.cfg.DamageBoostDuration, "quiz:"+out.QuestionID)
		return
	}
	q.buffs.Apply(now, p, BuffSpeedBoost, q.cfg.SpeedBoostValue, q.cfg.SpeedBoostDuration, "quiz:"+out.QuestionID)
}
