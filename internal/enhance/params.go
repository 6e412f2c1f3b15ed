package enhance

// Params holds the sampling knobs forwarded to the completion API.
// Temperature is always sent. Every other field has a neutral value
// that keeps it out of the request payload entirely, so the backend's
// own defaults apply instead of a guessed one.
type Params struct {
	Temperature       float64
	MaxTokens         int
	TopP              float64
	TopK              int
	MinP              float64
	TopA              float64
	Seed              int
	RepetitionPenalty float64
}

// DefaultParams returns params where only temperature is active.
func DefaultParams() Params {
	return Params{
		Temperature:       0.8,
		TopP:              1,
		Seed:              -1,
		RepetitionPenalty: 1,
	}
}

func (p Params) apply(payload map[string]any) {
	payload["temperature"] = p.Temperature
	if p.MaxTokens > 0 {
		payload["max_tokens"] = p.MaxTokens
	}
	if p.TopP > 0 && p.TopP != 1 {
		payload["top_p"] = p.TopP
	}
	if p.TopK > 0 {
		payload["top_k"] = p.TopK
	}
	if p.MinP > 0 {
		payload["min_p"] = p.MinP
	}
	if p.TopA > 0 {
		payload["top_a"] = p.TopA
	}
	if p.Seed >= 0 {
		payload["seed"] = p.Seed
	}
	if p.RepetitionPenalty > 0 && p.RepetitionPenalty != 1 {
		payload["repetition_penalty"] = p.RepetitionPenalty
	}
}
