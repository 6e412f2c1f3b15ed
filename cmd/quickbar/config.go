package main

import (
	"github.com/csheth/quickbar/internal/enhance"
	"github.com/csheth/quickbar/internal/settings"
)

// storedParams layers the persisted sampling knobs over the provider
// defaults. Keys absent from the settings file keep their neutral
// sentinels, so they stay out of request payloads.
func storedParams(store *settings.Store) enhance.Params {
	p := enhance.DefaultParams()
	p.Temperature = store.Float("temperature", p.Temperature)
	p.MaxTokens = store.Int("max_tokens", p.MaxTokens)
	p.TopP = store.Float("top_p", p.TopP)
	p.TopK = store.Int("top_k", p.TopK)
	p.MinP = store.Float("min_p", p.MinP)
	p.TopA = store.Float("top_a", p.TopA)
	p.Seed = store.Int("seed", p.Seed)
	p.RepetitionPenalty = store.Float("repetition_penalty", p.RepetitionPenalty)
	return p
}
