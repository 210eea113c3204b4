package service

import (
	"math/rand"
	"testing"

	"quiz_prep_backend/internal/model"
)

func questionPool(ids ...uint) []model.Question {
	pool := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		q := model.Question{}
		q.ID = id
		pool = append(pool, q)
	}
	return pool
}

func TestPickByFreshnessPrefersUnseen(t *testing.T) {
	pool := questionPool(1, 2, 3, 4)
	history := map[uint]bool{
		1: true,  // 答对过
		2: false, // 答错过
	}

	got := pickByFreshness(pool, history, 2, rand.New(rand.NewSource(1)))

	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
	for _, id := range got {
		if id != 3 && id != 4 {
			t.Errorf("unseen questions 3 and 4 should fill the quiz first, got %v", got)
		}
	}
}

func TestPickByFreshnessFallsBackToMissedThenMastered(t *testing.T) {
	pool := questionPool(1, 2, 3)
	history := map[uint]bool{
		1: true,
		2: false,
		3: false,
	}

	got := pickByFreshness(pool, history, 3, rand.New(rand.NewSource(1)))

	if len(got) != 3 {
		t.Fatalf("got %d questions, want 3", len(got))
	}
	// 答错过的 2 和 3 必须排在答对过的 1 前面
	if got[2] != 1 {
		t.Errorf("mastered question 1 should come last, got %v", got)
	}
}

func TestPickByFreshnessCapsAtPoolSize(t *testing.T) {
	got := pickByFreshness(questionPool(1, 2), nil, 5, rand.New(rand.NewSource(1)))
	if len(got) != 2 {
		t.Errorf("got %d questions, want the whole pool of 2", len(got))
	}
}

func TestPickByFreshnessSeedReproducible(t *testing.T) {
	pool := questionPool(1, 2, 3, 4, 5, 6, 7, 8)

	first := pickByFreshness(pool, nil, 4, rand.New(rand.NewSource(42)))
	second := pickByFreshness(questionPool(1, 2, 3, 4, 5, 6, 7, 8), nil, 4, rand.New(rand.NewSource(42)))

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed should give same selection, got %v vs %v", first, second)
		}
	}
}

func TestPickByFreshnessSeedIndependentOfPoolOrder(t *testing.T) {
	forward := pickByFreshness(questionPool(1, 2, 3, 4, 5), nil, 3, rand.New(rand.NewSource(7)))
	reversed := pickByFreshness(questionPool(5, 4, 3, 2, 1), nil, 3, rand.New(rand.NewSource(7)))

	if len(forward) != len(reversed) {
		t.Fatalf("runs differ in length: %v vs %v", forward, reversed)
	}
	for i := range forward {
		if forward[i] != reversed[i] {
			t.Fatalf("selection must not depend on pool order, got %v vs %v", forward, reversed)
		}
	}
}

func TestShuffleIDsPermutes(t *testing.T) {
	ids := []uint{3, 1, 2}
	shuffleIDs(ids, rand.New(rand.NewSource(1)))

	if len(ids) != 3 {
		t.Fatalf("shuffle changed length: %v", ids)
	}
	seen := map[uint]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	for _, want := range []uint{1, 2, 3} {
		if !seen[want] {
			t.Errorf("id %d lost in shuffle: %v", want, ids)
		}
	}
}
