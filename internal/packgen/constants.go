package packgen

// Weight table syntax: "TIER:weight" pairs joined by commas
const (
	weightPairSeparator  = ","
	weightValueSeparator = ":"
)

// seedStream is mixed into the PCG stream so a sequence seed of zero still
// produces a well-spread generator state
const seedStream = 0x9E3779B97F4A7C15

// Error context messages
const (
	ErrContextEmptyCatalog   = "catalog has no collectibles to draw from"
	ErrContextNegativeCount  = "draw count must not be negative"
	ErrContextWeightsSum     = "rarity weights must sum to exactly 1"
	ErrContextWeightNegative = "rarity weight must not be negative"
	ErrContextWeightSyntax   = "malformed rarity weight"
	ErrContextDuplicateTier  = "rarity listed twice"
)
