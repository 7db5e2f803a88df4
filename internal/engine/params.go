package engine

// parameterInfo describes one entry of the WMO parameter tables consumed by
// the shortName/name/units keys. The table carries the common surface and
// pressure-level parameters; everything else resolves to "unknown", the same
// fallback convention GRIB tools use.
type parameterInfo struct {
	shortName string
	name      string
	units     string
}

type parameterID struct {
	discipline uint8
	category   uint8
	number     uint8
}

var parameterTable = map[parameterID]parameterInfo{
	{0, 0, 0}:  {"t", "Temperature", "K"},
	{0, 0, 6}:  {"dpt", "Dew point temperature", "K"},
	{0, 1, 1}:  {"r", "Relative humidity", "%"},
	{0, 1, 8}:  {"tp", "Total precipitation", "kg m-2"},
	{0, 1, 11}: {"sde", "Snow depth", "m"},
	{0, 2, 2}:  {"u", "u-component of wind", "m s-1"},
	{0, 2, 3}:  {"v", "v-component of wind", "m s-1"},
	{0, 2, 22}: {"gust", "Wind speed (gust)", "m s-1"},
	{0, 3, 0}:  {"pres", "Pressure", "Pa"},
	{0, 3, 1}:  {"prmsl", "Pressure reduced to MSL", "Pa"},
	{0, 3, 5}:  {"gh", "Geopotential height", "gpm"},
	{0, 6, 1}:  {"tcc", "Total cloud cover", "%"},
	{0, 7, 6}:  {"cape", "Convective available potential energy", "J kg-1"},
	{2, 0, 0}:  {"lsm", "Land-sea mask", "(0 - 1)"},
	{10, 0, 3}: {"shww", "Significant height of wind waves", "m"},
}

var unknownParameter = parameterInfo{shortName: "unknown", name: "unknown", units: "unknown"}

// parameter resolves the message's parameter table entry. Defined whenever
// a product definition section is present.
func (h *Handle) parameter() (parameterInfo, bool) {
	if h.msg.product == nil || h.msg.product.templateNumber != 0 {
		return parameterInfo{}, false
	}
	id := parameterID{
		discipline: h.msg.ind.discipline,
		category:   h.msg.product.parameterCategory,
		number:     h.msg.product.parameterNumber,
	}
	if p, ok := parameterTable[id]; ok {
		return p, true
	}
	return unknownParameter, true
}

// centreNames maps common originating centre codes to their identifiers.
var centreNames = map[uint16]string{
	7:  "kwbc",
	34: "rjtd",
	54: "cwao",
	74: "egrr",
	78: "edzw",
	84: "lfpw",
	85: "lfpw",
	86: "efkl",
	94: "ekmi",
	97: "esa",
	98: "ecmf",
}

// surfaceTypeName maps the type of first fixed surface to the level-type
// identifiers used in key iteration output.
func surfaceTypeName(t uint8) string {
	switch t {
	case 1:
		return "surface"
	case 100:
		return "isobaricInhPa"
	case 101:
		return "meanSea"
	case 103:
		return "heightAboveGround"
	case 105:
		return "hybrid"
	}
	return "unknown"
}
