package game

// RandomSource yields uniform values in [0, 1). *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// RewardTier is one rung of the cumulative payout ladder. A draw r selects the
// first tier with r < Upper.
type RewardTier struct {
	Upper      float64 `json:"upper"`
	Multiplier float64 `json:"multiplier"`
}

// RewardTable is fixed; the last tier catches every draw at or above 0.999.
var RewardTable = []RewardTier{
	{Upper: 0.30, Multiplier: 1.2},
	{Upper: 0.55, Multiplier: 1.6},
	{Upper: 0.90, Multiplier: 2},
	{Upper: 0.93, Multiplier: 4},
	{Upper: 0.97, Multiplier: 6},
	{Upper: 0.985, Multiplier: 9},
	{Upper: 0.996, Multiplier: 27},
	{Upper: 0.999, Multiplier: 100},
	{Upper: 1.0, Multiplier: 1000},
}

// Multiplier maps a draw in [0, 1) to its payout multiplier.
func Multiplier(r float64) float64 {
	for _, tier := range RewardTable[:len(RewardTable)-1] {
		if r < tier.Upper {
			return tier.Multiplier
		}
	}
	return RewardTable[len(RewardTable)-1].Multiplier
}

// DrawMultiplier takes one value from src and maps it through the table.
func DrawMultiplier(src RandomSource) float64 {
	return Multiplier(src.Float64())
}

// ExpectedMultiplier is the probability-weighted mean of the table.
func ExpectedMultiplier() float64 {
	mean := 0.0
	lower := 0.0
	for _, tier := range RewardTable {
		mean += (tier.Upper - lower) * tier.Multiplier
		lower = tier.Upper
	}
	return mean
}
