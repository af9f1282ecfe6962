package messaging

import (
	"math/rand/v2"
	"testing"
)

func TestVoicePolicyExtremes(t *testing.T) {
	always := NewVoicePolicy(WithProbability(1))
	never := NewVoicePolicy(WithProbability(0))
	for i := 0; i < 100; i++ {
		if !always.ShouldAttachVoice() {
			t.Fatal("probability 1 returned false")
		}
		if never.ShouldAttachVoice() {
			t.Fatal("probability 0 returned true")
		}
	}
}

func TestVoicePolicyConvergesToProbability(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	policy := NewVoicePolicy(WithRand(rng.Float64))

	const trials = 100000
	hits := 0
	for i := 0; i < trials; i++ {
		if policy.ShouldAttachVoice() {
			hits++
		}
	}
	ratio := float64(hits) / trials
	if ratio < 0.38 || ratio > 0.42 {
		t.Errorf("hit ratio = %v, want close to %v", ratio, DefaultVoiceProbability)
	}
}

func TestVoicePolicyIndependentSamples(t *testing.T) {
	// Injected sequence alternates below/above the threshold.
	seq := []float64{0.1, 0.9, 0.39, 0.41}
	i := 0
	policy := NewVoicePolicy(WithRand(func() float64 {
		v := seq[i%len(seq)]
		i++
		return v
	}))
	want := []bool{true, false, true, false}
	for n, w := range want {
		if got := policy.ShouldAttachVoice(); got != w {
			t.Errorf("sample %d = %v, want %v", n, got, w)
		}
	}
}
