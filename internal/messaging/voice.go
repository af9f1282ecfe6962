package messaging

import (
	"math/rand/v2"
)

// DefaultVoiceProbability is the chance that any single reply also carries a
// synthesized voice note.
const DefaultVoiceProbability = 0.4

// VoicePolicy decides, independently per outbound reply, whether to attach a
// voice note. The decision is a Bernoulli trial; it carries no per-session
// state, so consecutive replies in one conversation may differ.
type VoicePolicy struct {
	probability float64
	randFloat   func() float64
}

// VoiceOption configures a VoicePolicy.
type VoiceOption func(*VoicePolicy)

// WithProbability overrides the voice-note probability (0 disables, 1 always).
func WithProbability(p float64) VoiceOption {
	return func(v *VoicePolicy) {
		v.probability = p
	}
}

// WithRand injects the random source, used by tests for determinism.
func WithRand(f func() float64) VoiceOption {
	return func(v *VoicePolicy) {
		v.randFloat = f
	}
}

// NewVoicePolicy creates a policy with the default 40% probability.
func NewVoicePolicy(opts ...VoiceOption) *VoicePolicy {
	v := &VoicePolicy{
		probability: DefaultVoiceProbability,
		randFloat:   rand.Float64,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ShouldAttachVoice samples the policy.
func (v *VoicePolicy) ShouldAttachVoice() bool {
	return v.randFloat() < v.probability
}
