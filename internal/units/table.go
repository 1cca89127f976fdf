package units

import "math"

type unitDef struct {
	factor     float64
	dim        Dimension
	prefixable bool
}

var (
	dimLength      = Dimension{1, 0, 0, 0, 0, 0, 0}
	dimMass        = Dimension{0, 1, 0, 0, 0, 0, 0}
	dimTime        = Dimension{0, 0, 1, 0, 0, 0, 0}
	dimCurrent     = Dimension{0, 0, 0, 1, 0, 0, 0}
	dimTemperature = Dimension{0, 0, 0, 0, 1, 0, 0}
	dimAmount      = Dimension{0, 0, 0, 0, 0, 1, 0}
	dimLuminous    = Dimension{0, 0, 0, 0, 0, 0, 1}

	dimArea      = Dimension{2, 0, 0, 0, 0, 0, 0}
	dimVolume    = Dimension{3, 0, 0, 0, 0, 0, 0}
	dimFrequency = Dimension{0, 0, -1, 0, 0, 0, 0}
	dimForce     = Dimension{1, 1, -2, 0, 0, 0, 0}
	dimEnergy    = Dimension{2, 1, -2, 0, 0, 0, 0}
	dimPower     = Dimension{2, 1, -3, 0, 0, 0, 0}
	dimPressure  = Dimension{-1, 1, -2, 0, 0, 0, 0}
	dimCharge    = Dimension{0, 0, 1, 1, 0, 0, 0}
	dimVoltage   = Dimension{2, 1, -3, -1, 0, 0, 0}
	dimOhm       = Dimension{2, 1, -3, -2, 0, 0, 0}
	dimFarad     = Dimension{-2, -1, 4, 2, 0, 0, 0}
)

// Mass is anchored on the gram so that "kg" resolves through the prefix
// table; the factor still lands on kilograms.
var table = map[string]unitDef{
	// base
	"m":   {1, dimLength, true},
	"g":   {1e-3, dimMass, true},
	"s":   {1, dimTime, true},
	"A":   {1, dimCurrent, true},
	"K":   {1, dimTemperature, true},
	"mol": {1, dimAmount, true},
	"cd":  {1, dimLuminous, true},

	// derived
	"N":   {1, dimForce, true},
	"J":   {1, dimEnergy, true},
	"W":   {1, dimPower, true},
	"Pa":  {1, dimPressure, true},
	"Hz":  {1, dimFrequency, true},
	"C":   {1, dimCharge, true},
	"V":   {1, dimVoltage, true},
	"ohm": {1, dimOhm, true},
	"Ω":   {1, dimOhm, true},
	"F":   {1, dimFarad, true},
	"L":   {1e-3, dimVolume, true},
	"l":   {1e-3, dimVolume, true},

	// non-SI
	"min":  {60, dimTime, false},
	"h":    {3600, dimTime, false},
	"hr":   {3600, dimTime, false},
	"day":  {86400, dimTime, false},
	"sec":  {1, dimTime, false},
	"t":    {1000, dimMass, false},
	"ha":   {1e4, dimArea, false},
	"atm":  {101325, dimPressure, false},
	"bar":  {1e5, dimPressure, true},
	"mmHg": {133.322387415, dimPressure, false},
	"cal":  {4.184, dimEnergy, true},
	"eV":   {1.602176634e-19, dimEnergy, true},
	"Wh":   {3600, dimEnergy, true},
	"in":   {0.0254, dimLength, false},
	"ft":   {0.3048, dimLength, false},
	"mi":   {1609.344, dimLength, false},
	"lb":   {0.45359237, dimMass, false},

	// Angles are dimensionless, as in SI: "0.5 rad" equals a bare 0.5.
	"rad": {1, Dimension{}, true},
	"deg": {math.Pi / 180, Dimension{}, false},
	"°":   {math.Pi / 180, Dimension{}, false},
}

type prefix struct {
	symbol string
	factor float64
}

// Longer symbols first so "da" wins over "d".
var prefixes = []prefix{
	{"da", 1e1},
	{"h", 1e2},
	{"p", 1e-12},
	{"n", 1e-9},
	{"u", 1e-6},
	{"µ", 1e-6},
	{"μ", 1e-6},
	{"m", 1e-3},
	{"c", 1e-2},
	{"d", 1e-1},
	{"k", 1e3},
	{"M", 1e6},
	{"G", 1e9},
	{"T", 1e12},
}
