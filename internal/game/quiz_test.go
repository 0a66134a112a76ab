package game

import (
	"testing"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
)

func testQuizRewards() (*QuizRewards, *BuffSystem) {
	cfg := config.BuffConfig{
		DamageBoostValue:    0.5,
		DamageBoostDuration: 10 * time.Second,
		SpeedBoostValue:     0.3,
		SpeedBoostDuration:  8 * time.Second,
		VulnerabilityValue:  0.5,
		VulnerabilityTime:   5 * time.Second,
	}
	bs := NewBuffSystem(cfg)
	return NewQuizRewards(cfg, bs), bs
}

// TestQuizFastCorrectAnswer tests that answering within a third of the
// allotted time earns a damage boost.
func TestQuizFastCorrectAnswer(t *testing.T) {
	q, _ := testQuizRewards()
	now := time.Now()
	p := NewPlayerState("p1", arena.Vec2{X: 100, Y: 100}, 60)

	q.Resolve(now, p, QuizOutcome{
		PlayerID:   "p1",
		QuestionID: "q1",
		Correct:    true,
		AnswerTime: 3 * time.Second,
		Allotted:   10 * time.Second,
	})

	b, ok := p.Buffs.Get(BuffDamageBoost)
	if !ok {
		t.Fatalf("Expected a damage boost buff")
	}
	if b.Value != 0.5 || b.Source != "quiz:q1" {
		t.Errorf("Expected value 0.5 from quiz:q1, got %v from %s", b.Value, b.Source)
	}
}

// TestQuizSlowCorrectAnswer tests that a slower correct answer earns a
// speed boost instead.
func TestQuizSlowCorrectAnswer(t *testing.T) {
	q, _ := testQuizRewards()
	now := time.Now()
	p := NewPlayerState("p1", arena.Vec2{X: 100, Y: 100}, 60)

	q.Resolve(now, p, QuizOutcome{
		PlayerID:   "p1",
		QuestionID: "q2",
		Correct:    true,
		AnswerTime: 7 * time.Second,
		Allotted:   10 * time.Second,
	})

	if _, ok := p.Buffs.Get(BuffDamageBoost); ok {
		t.Errorf("Expected no damage boost for a slow answer")
	}
	b, ok := p.Buffs.Get(BuffSpeedBoost)
	if !ok || b.Value != 0.3 {
		t.Errorf("Expected speed boost 0.3, got %v", b)
	}
}

// TestQuizIncorrectAnswer tests the vulnerability debuff.
func TestQuizIncorrectAnswer(t *testing.T) {
	q, bs := testQuizRewards()
	now := time.Now()
	p := NewPlayerState("p1", arena.Vec2{X: 100, Y: 100}, 60)

	q.Resolve(now, p, QuizOutcome{
		PlayerID:   "p1",
		QuestionID: "q3",
		Correct:    false,
		AnswerTime: time.Second,
		Allotted:   10 * time.Second,
	})

	b, ok := p.Buffs.Get(BuffVulnerability)
	if !ok || b.Value != 0.5 {
		t.Fatalf("Expected vulnerability 0.5, got %v", b)
	}
	if p.Buffs.DamageTakenMultiplier() != 1.5 {
		t.Errorf("Expected damage taken multiplier 1.5, got %v", p.Buffs.DamageTakenMultiplier())
	}

	evts := bs.DrainEvents()
	if len(evts) != 1 || evts[0].Payload["buff"] != "vulnerability" {
		t.Errorf("Expected one vulnerability buff_applied event, got %v", evts)
	}
}

// TestQuizZeroAllottedTime tests that a missing time budget never grants
// the fast-answer reward.
func TestQuizZeroAllottedTime(t *testing.T) {
	q, _ := testQuizRewards()
	now := time.Now()
	p := NewPlayerState("p1", arena.Vec2{X: 100, Y: 100}, 60)

	q.Resolve(now, p, QuizOutcome{
		PlayerID:   "p1",
		QuestionID: "q4",
		Correct:    true,
		AnswerTime: 0,
	})

	if _, ok := p.Buffs.Get(BuffDamageBoost); ok {
		t.Errorf("Expected no damage boost without an allotted time")
	}
	if _, ok := p.Buffs.Get(BuffSpeedBoost); !ok {
		t.Errorf("Expected the speed boost fallback")
	}
}
