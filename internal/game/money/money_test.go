package money

import (
	"errors"
	"testing"
)

func TestNewBetRejectsNonPositive(t *testing.T) {
	if _, err := NewBet(New(0)); !errors.Is(err, ErrInvalidBetAmount) {
		t.Fatalf("zero bet must fail, got %v", err)
	}
	if _, err := NewBet(New(-5)); !errors.Is(err, ErrInvalidBetAmount) {
		t.Fatalf("negative bet must fail, got %v", err)
	}
	if _, err := NewBet(New(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ✅ 600 超出 [10,500] 上限
func TestWithinLimits(t *testing.T) {
	min, max := New(10), New(500)

	over, _ := NewBet(New(600))
	if over.WithinLimits(min, max) {
		t.Fatalf("600 should be outside [10,500]")
	}

	// 边界值包含在内
	atMin, _ := NewBet(New(10))
	atMax, _ := NewBet(New(500))
	if !atMin.WithinLimits(min, max) || !atMax.WithinLimits(min, max) {
		t.Fatalf("limit bounds are inclusive")
	}

	under, _ := NewBet(New(9))
	if under.WithinLimits(min, max) {
		t.Fatalf("9 should be below the minimum")
	}
}

// ✅ Blackjack 100 → 250
func TestPayoutBlackjack(t *testing.T) {
	bet, _ := NewBet(New(100))
	got := DefaultPayouts.Calculate(bet, PlayerBlackjack)
	if !got.Equal(MustParse("250")) {
		t.Fatalf("expected 250, got %s", got)
	}
}

func TestPayoutWin(t *testing.T) {
	bet, _ := NewBet(New(100))
	got := DefaultPayouts.Calculate(bet, PlayerWins)
	if !got.Equal(New(200)) {
		t.Fatalf("expected 200, got %s", got)
	}
}

// ✅ Push 精确返还原注，无舍入漂移
func TestPayoutPushRoundTrip(t *testing.T) {
	bet, _ := NewBet(MustParse("33.33"))
	got := DefaultPayouts.Calculate(bet, Push)
	if !got.Equal(bet.Amount()) {
		t.Fatalf("push must return the stake exactly, got %s", got)
	}
}

func TestPayoutLoss(t *testing.T) {
	bet, _ := NewBet(New(100))
	got := DefaultPayouts.Calculate(bet, DealerWins)
	if !got.Equal(Zero) {
		t.Fatalf("expected 0, got %s", got)
	}
}

// 6:5 桌的 blackjack 赔率作为配置而非代码分支
func TestConfigurableBlackjackPayout(t *testing.T) {
	sixToFive := NewPayoutTable(MustParse("2.2"))
	bet, _ := NewBet(New(100))
	got := sixToFive.Calculate(bet, PlayerBlackjack)
	if !got.Equal(New(220)) {
		t.Fatalf("expected 220, got %s", got)
	}
}

func TestUnknownOutcomePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("unmapped outcome must panic")
		}
	}()
	bet, _ := NewBet(New(1))
	DefaultPayouts.Calculate(bet, Outcome("five_card_charlie"))
}

func TestMoneyArithmetic(t *testing.T) {
	a := MustParse("10.50")
	b := MustParse("0.25")

	if got := a.Add(b); !got.Equal(MustParse("10.75")) {
		t.Fatalf("add: got %s", got)
	}
	if got := a.Sub(b); !got.Equal(MustParse("10.25")) {
		t.Fatalf("sub: got %s", got)
	}
	if got := b.Mul(New(4)); !got.Equal(New(1)) {
		t.Fatalf("mul: got %s", got)
	}
	if !b.LessThan(a) {
		t.Fatalf("0.25 < 10.50")
	}
	if New(-1).IsPositive() || !New(-1).IsNegative() {
		t.Fatalf("sign predicates broken")
	}
}

func TestMoneyJSON(t *testing.T) {
	m := MustParse("12.34")
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"12.34"` {
		t.Fatalf("expected quoted decimal, got %s", data)
	}

	var back Money
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Equal(m) {
		t.Fatalf("round trip changed the amount: %s", back)
	}
}
