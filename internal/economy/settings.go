package economy

import (
	"errors"
	"fmt"
	"math"
)

// Settings are the economy rates. A nil *Settings passed to the engine means
// DefaultSettings.
type Settings struct {
	// CoinToGold is how many coins buy one gold.
	CoinToGold float64 `json:"coinToGold"`

	// GoldToDiamond is how many gold buy one diamond.
	GoldToDiamond float64 `json:"goldToDiamond"`

	// CostPerMark is the unlock cost per mark of a non-spark question.
	CostPerMark float64 `json:"costPerMark"`

	// RewardPractice and RewardClassroom are the worksheet multipliers.
	RewardPractice  float64 `json:"rewardPractice"`
	RewardClassroom float64 `json:"rewardClassroom"`

	// RewardSpark is the coins earned per mark on a spark question.
	RewardSpark float64 `json:"rewardSpark"`
}

// DefaultSettings returns the platform defaults.
func DefaultSettings() Settings {
	return Settings{
		CoinToGold:      10,
		GoldToDiamond:   10,
		CostPerMark:     0.5,
		RewardPractice:  1.0,
		RewardClassroom: 0.5,
		RewardSpark:     0.5,
	}
}

func resolve(s *Settings) Settings {
	if s == nil {
		return DefaultSettings()
	}
	return *s
}

// Validate rejects negative rates and conversion ratios that are not
// positive whole numbers.
func (s Settings) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"costPerMark", s.CostPerMark},
		{"rewardPractice", s.RewardPractice},
		{"rewardClassroom", s.RewardClassroom},
		{"rewardSpark", s.RewardSpark},
	}
	var errs []error
	for _, r := range rates {
		if r.v < 0 || math.IsNaN(r.v) || math.IsInf(r.v, 0) {
			errs = append(errs, fmt.Errorf("%s must be a non-negative number, got %v", r.name, r.v))
		}
	}
	for _, r := range []struct {
		name string
		v    float64
	}{{"coinToGold", s.CoinToGold}, {"goldToDiamond", s.GoldToDiamond}} {
		if r.v < 1 || r.v != math.Trunc(r.v) {
			errs = append(errs, fmt.Errorf("%s must be a positive whole number, got %v", r.name, r.v))
		}
	}
	return errors.Join(errs...)
}

// Overrides is a partial Settings, as stored by the settings provider or
// sent by a caller. Unset fields keep the value they are applied to.
type Overrides struct {
	CoinToGold      *float64 `json:"coinToGold,omitempty"`
	GoldToDiamond   *float64 `json:"goldToDiamond,omitempty"`
	CostPerMark     *float64 `json:"costPerMark,omitempty"`
	RewardPractice  *float64 `json:"rewardPractice,omitempty"`
	RewardClassroom *float64 `json:"rewardClassroom,omitempty"`
	RewardSpark     *float64 `json:"rewardSpark,omitempty"`
}

// Apply returns base with every set override applied.
func (o Overrides) Apply(base Settings) Settings {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.CoinToGold, o.CoinToGold)
	set(&base.GoldToDiamond, o.GoldToDiamond)
	set(&base.CostPerMark, o.CostPerMark)
	set(&base.RewardPractice, o.RewardPractice)
	set(&base.RewardClassroom, o.RewardClassroom)
	set(&base.RewardSpark, o.RewardSpark)
	return base
}

// Fields returns the set overrides keyed by their JSON name.
func (o Overrides) Fields() map[string]float64 {
	out := make(map[string]float64)
	for name, v := range o.pointers() {
		if *v != nil {
			out[name] = **v
		}
	}
	return out
}

// SetField sets the override named by its JSON name.
func (o *Overrides) SetField(name string, v float64) error {
	p, ok := o.pointers()[name]
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	*p = &v
	return nil
}

func (o *Overrides) pointers() map[string]**float64 {
	return map[string]**float64{
		"coinToGold":      &o.CoinToGold,
		"goldToDiamond":   &o.GoldToDiamond,
		"costPerMark":     &o.CostPerMark,
		"rewardPractice":  &o.RewardPractice,
		"rewardClassroom": &o.RewardClassroom,
		"rewardSpark":     &o.RewardSpark,
	}
}

// AsOverrides returns s with every field set.
func (s Settings) AsOverrides() Overrides {
	return Overrides{
		CoinToGold:      &s.CoinToGold,
		GoldToDiamond:   &s.GoldToDiamond,
		CostPerMark:     &s.CostPerMark,
		RewardPractice:  &s.RewardPractice,
		RewardClassroom: &s.RewardClassroom,
		RewardSpark:     &s.RewardSpark,
	}
}
