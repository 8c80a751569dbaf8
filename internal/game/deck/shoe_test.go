package deck

import (
	"errors"
	"math/rand"
	"testing"
)

// 工具：检查是否有重复牌
func hasDuplicates(cards []Card) bool {
	seen := make(map[Card]int)
	for _, c := range cards {
		seen[c]++
		if seen[c] > 1 {
			return true
		}
	}
	return false
}

func newTestShoe(decks int, seed int64) *Shoe {
	return NewShoe(decks, 0.25, rand.New(rand.NewSource(seed)))
}

// ✅ 测试牌靴初始化
func TestNewShoe(t *testing.T) {
	s := newTestShoe(1, 1)

	if s.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", s.Remaining())
	}
	if hasDuplicates(s.cards) {
		t.Fatalf("shoe should not contain duplicates")
	}

	// 检查花色和点数完整性
	suits := make(map[Suit]bool)
	ranks := make(map[Rank]bool)
	for _, c := range s.cards {
		suits[c.Suit] = true
		ranks[c.Rank] = true
	}
	if len(suits) != 4 {
		t.Fatalf("expected 4 suits, got %d", len(suits))
	}
	if len(ranks) != 13 {
		t.Fatalf("expected 13 ranks, got %d", len(ranks))
	}
}

func TestMultiDeckShoe(t *testing.T) {
	s := newTestShoe(6, 1)
	if s.Remaining() != 312 {
		t.Fatalf("expected 312 cards for 6 decks, got %d", s.Remaining())
	}
	if s.FullSize() != 312 {
		t.Fatalf("expected full size 312, got %d", s.FullSize())
	}

	// 每张牌应恰好出现 6 次
	counts := make(map[Card]int)
	for _, c := range s.cards {
		counts[c]++
	}
	for c, n := range counts {
		if n != 6 {
			t.Fatalf("card %v appears %d times, want 6", c, n)
		}
	}
}

// ✅ 洗牌是牌集上的双射：洗前洗后多重集合相同
func TestShuffleIsBijection(t *testing.T) {
	s := newTestShoe(2, 7)
	before := make(map[Card]int)
	for _, c := range s.cards {
		before[c]++
	}

	s.shuffle()

	after := make(map[Card]int)
	for _, c := range s.cards {
		after[c]++
	}
	if len(before) != len(after) {
		t.Fatalf("shuffle changed the card multiset")
	}
	for c, n := range before {
		if after[c] != n {
			t.Fatalf("card %v count changed: %d -> %d", c, n, after[c])
		}
	}
}

// ✅ 相同 seed 应产生相同序列
func TestShuffleDeterministicBySeed(t *testing.T) {
	s1 := newTestShoe(1, 42)
	s2 := newTestShoe(1, 42)
	for i := range s1.cards {
		if s1.cards[i] != s2.cards[i] {
			t.Fatalf("expected identical shoes for same seed")
		}
	}

	s3 := newTestShoe(1, 99)
	diff := false
	for i := range s1.cards {
		if s1.cards[i] != s3.cards[i] {
			diff = true
			break
		}
	}
	if !diff {
		t.Fatalf("expected shoe with different seed to differ")
	}
}

func TestDraw(t *testing.T) {
	s := newTestShoe(1, 3)
	first := s.cards[0]

	c, err := s.Draw()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != first {
		t.Fatalf("draw should remove the front card")
	}
	if s.Remaining() != 51 {
		t.Fatalf("expected 51 remaining, got %d", s.Remaining())
	}
}

func TestDrawEmptyShoe(t *testing.T) {
	s := newTestShoe(1, 3)
	for i := 0; i < 52; i++ {
		if _, err := s.Draw(); err != nil {
			t.Fatalf("unexpected error at draw %d: %v", i, err)
		}
	}
	if _, err := s.Draw(); !errors.Is(err, ErrEmptyShoe) {
		t.Fatalf("expected ErrEmptyShoe, got %v", err)
	}
}

// ✅ DrawMany 等价于 n 次顺序 Draw
func TestDrawManyPreservesOrder(t *testing.T) {
	s1 := newTestShoe(1, 5)
	s2 := newTestShoe(1, 5)

	many, err := s1.DrawMany(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		c, err := s2.Draw()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if many[i] != c {
			t.Fatalf("DrawMany order differs from sequential draws at %d", i)
		}
	}
	if s1.Remaining() != 47 {
		t.Fatalf("expected 47 remaining, got %d", s1.Remaining())
	}
}

// ✅ 负数请求视为无效，不动牌靴
func TestDrawManyNegative(t *testing.T) {
	s := newTestShoe(1, 5)

	if _, err := s.DrawMany(-1); !errors.Is(err, ErrInsufficientCards) {
		t.Fatalf("expected ErrInsufficientCards, got %v", err)
	}
	if s.Remaining() != 52 {
		t.Fatalf("failed draw must leave the shoe untouched, got %d", s.Remaining())
	}
}

// ✅ 抽 13 张后未到换靴阈值；再要 40 张应失败且不动牌靴
func TestPenetrationScenario(t *testing.T) {
	s := newTestShoe(1, 11)

	if _, err := s.DrawMany(13); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ShouldReshuffle() {
		t.Fatalf("39 of 52 remaining should not trigger reshuffle")
	}

	if _, err := s.DrawMany(40); !errors.Is(err, ErrInsufficientCards) {
		t.Fatalf("expected ErrInsufficientCards, got %v", err)
	}
	if s.Remaining() != 39 {
		t.Fatalf("failed DrawMany must leave the shoe untouched, got %d", s.Remaining())
	}
}

func TestShouldReshuffleBoundary(t *testing.T) {
	s := newTestShoe(1, 13)

	// 剩 13 张（恰好 25%）不换，剩 12 张换
	if _, err := s.DrawMany(39); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ShouldReshuffle() {
		t.Fatalf("exactly 25%% remaining should not trigger reshuffle")
	}
	if _, err := s.Draw(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.ShouldReshuffle() {
		t.Fatalf("below 25%% remaining should trigger reshuffle")
	}
}

func TestReset(t *testing.T) {
	s := newTestShoe(1, 17)
	if _, err := s.DrawMany(45); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Reset()
	if s.Remaining() != 52 {
		t.Fatalf("reset should rebuild the full shoe, got %d", s.Remaining())
	}
	if hasDuplicates(s.cards) {
		t.Fatalf("reset shoe should not contain duplicates")
	}
}

func TestCardBaseValue(t *testing.T) {
	cases := []struct {
		rank Rank
		want int
	}{
		{2, 2}, {9, 9}, {10, 10},
		{Jack, 10}, {Queen, 10}, {King, 10},
		{Ace, 11},
	}
	for _, tc := range cases {
		c := Card{Suit: Spades, Rank: tc.rank}
		if got := c.BaseValue(); got != tc.want {
			t.Fatalf("rank %d: expected base value %d, got %d", tc.rank, tc.want, got)
		}
	}
}
