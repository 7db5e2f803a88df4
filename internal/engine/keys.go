package engine

import "strconv"

type kind uint8

const (
	kindString kind = iota
	kindLong
	kindDouble
)

// keyValue is the typed result of a scalar key lookup.
type keyValue struct {
	kind kind
	s    string
	i    int64
	f    float64
}

func longValue(i int64) (keyValue, bool)     { return keyValue{kind: kindLong, i: i}, true }
func stringValue(s string) (keyValue, bool)  { return keyValue{kind: kindString, s: s}, true }
func doubleValue(f float64) (keyValue, bool) { return keyValue{kind: kindDouble, f: f}, true }

func undefined() (keyValue, bool) { return keyValue{}, false }

// nsMask is a bitmask of the namespaces a key belongs to. Every key belongs
// to the "all" namespace implicitly.
type nsMask uint16

const (
	nsLS nsMask = 1 << iota
	nsParameter
	nsStatistics
	nsTime
	nsGeography
	nsVertical
	nsMars
)

// NamespaceMask resolves a namespace name. The empty string selects all keys.
func NamespaceMask(name string) (nsMask, bool) {
	switch name {
	case "":
		return 0, true
	case "ls":
		return nsLS, true
	case "parameter":
		return nsParameter, true
	case "statistics":
		return nsStatistics, true
	case "time":
		return nsTime, true
	case "geography":
		return nsGeography, true
	case "vertical":
		return nsVertical, true
	case "mars":
		return nsMars, true
	}
	return 0, false
}

type keyDef struct {
	name string
	ns   nsMask
	get  func(h *Handle) (keyValue, bool)
}

// keyDefs lists every scalar key the engine understands, in iteration order.
var keyDefs = []keyDef{
	{"edition", nsLS, func(h *Handle) (keyValue, bool) { return longValue(int64(h.msg.ind.edition)) }},
	{"editionNumber", 0, func(h *Handle) (keyValue, bool) { return longValue(int64(h.msg.ind.edition)) }},
	{"discipline", nsParameter, func(h *Handle) (keyValue, bool) { return longValue(int64(h.msg.ind.discipline)) }},
	{"totalLength", 0, func(h *Handle) (keyValue, bool) { return longValue(int64(h.msg.ind.totalLength)) }},
	{"centre", nsLS, (*Handle).keyCentre},
	{"subCentre", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.subCentre))
	}},
	{"tablesVersion", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.tablesVersion))
	}},
	{"significanceOfReferenceTime", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.significanceOfRT))
	}},
	{"year", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.year))
	}},
	{"month", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.month))
	}},
	{"day", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.day))
	}},
	{"hour", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.hour))
	}},
	{"minute", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.minute))
	}},
	{"second", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.id == nil {
			return undefined()
		}
		return longValue(int64(h.msg.id.second))
	}},
	{"dataDate", nsLS | nsTime, (*Handle).keyDataDate},
	{"dataTime", nsLS | nsTime, (*Handle).keyDataTime},
	{"dataType", nsLS, (*Handle).keyDataType},
	{"forecastTime", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.product == nil {
			return undefined()
		}
		return longValue(h.msg.product.forecastTime)
	}},
	{"stepUnits", nsTime, func(h *Handle) (keyValue, bool) {
		if h.msg.product == nil {
			return undefined()
		}
		return longValue(int64(h.msg.product.timeRangeUnit))
	}},
	{"stepRange", nsLS | nsTime, (*Handle).keyStepRange},
	{"gridType", nsLS | nsGeography, (*Handle).keyGridType},
	{"numberOfDataPoints", nsGeography, func(h *Handle) (keyValue, bool) {
		if h.msg.grid == nil {
			return undefined()
		}
		return longValue(int64(h.msg.grid.numberOfDataPoints))
	}},
	{"Ni", nsGeography, (*Handle).keyNi},
	{"Nj", nsGeography, (*Handle).keyNj},
	{"latitudeOfFirstGridPointInDegrees", nsGeography, gridDegrees(func(g *gridDefinition) int64 { return g.lat1 })},
	{"longitudeOfFirstGridPointInDegrees", nsGeography, gridDegrees(func(g *gridDefinition) int64 { return g.lon1 })},
	{"latitudeOfLastGridPointInDegrees", nsGeography, gridDegrees(func(g *gridDefinition) int64 { return g.lat2 })},
	{"longitudeOfLastGridPointInDegrees", nsGeography, gridDegrees(func(g *gridDefinition) int64 { return g.lon2 })},
	{"iDirectionIncrementInDegrees", nsGeography, gridDegrees(func(g *gridDefinition) int64 { return g.iInc })},
	{"jDirectionIncrementInDegrees", nsGeography, gridDegrees(func(g *gridDefinition) int64 { return g.jInc })},
	{"scanningMode", nsGeography, func(h *Handle) (keyValue, bool) {
		if h.msg.grid == nil || h.msg.grid.templateNumber != 0 {
			return undefined()
		}
		return longValue(int64(h.msg.grid.scanningMode))
	}},
	{"parameterCategory", nsParameter, func(h *Handle) (keyValue, bool) {
		if h.msg.product == nil {
			return undefined()
		}
		return longValue(int64(h.msg.product.parameterCategory))
	}},
	{"parameterNumber", nsParameter, func(h *Handle) (keyValue, bool) {
		if h.msg.product == nil {
			return undefined()
		}
		return longValue(int64(h.msg.product.parameterNumber))
	}},
	{"shortName", nsLS | nsParameter, (*Handle).keyShortName},
	{"name", nsParameter, (*Handle).keyName},
	{"units", nsParameter, (*Handle).keyUnits},
	{"typeOfLevel", nsLS | nsVertical, (*Handle).keyTypeOfLevel},
	{"level", nsLS | nsVertical, (*Handle).keyLevel},
	{"numberOfValues", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.repr == nil {
			return undefined()
		}
		return longValue(int64(h.msg.repr.numberOfValues))
	}},
	{"packingType", nsLS, (*Handle).keyPackingType},
	{"bitsPerValue", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.repr == nil || h.msg.repr.templateNumber != 0 {
			return undefined()
		}
		return longValue(int64(h.msg.repr.bitsPerValue))
	}},
	{"referenceValue", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.repr == nil || h.msg.repr.templateNumber != 0 {
			return undefined()
		}
		return doubleValue(float64(h.msg.repr.referenceValue))
	}},
	{"binaryScaleFactor", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.repr == nil || h.msg.repr.templateNumber != 0 {
			return undefined()
		}
		return longValue(int64(h.msg.repr.binaryScale))
	}},
	{"decimalScaleFactor", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.repr == nil || h.msg.repr.templateNumber != 0 {
			return undefined()
		}
		return longValue(int64(h.msg.repr.decimalScale))
	}},
	{"bitmapPresent", 0, func(h *Handle) (keyValue, bool) {
		if h.msg.bitmapApplies() {
			return longValue(1)
		}
		return longValue(0)
	}},
	{"bitmap", 0, func(h *Handle) (keyValue, bool) {
		if !h.msg.bitmapApplies() {
			return undefined()
		}
		// The raw bitmap never travels through the string path.
		return stringValue("")
	}},
	{"maximum", nsStatistics, statistic(func(s *valueStats) float64 { return s.max })},
	{"minimum", nsStatistics, statistic(func(s *valueStats) float64 { return s.min })},
	{"average", nsStatistics, statistic(func(s *valueStats) float64 { return s.avg })},
	{"date", nsMars, (*Handle).keyDataDate},
	{"time", nsMars, (*Handle).keyDataTime},
	{"step", nsMars, (*Handle).keyStepRange},
	{"param", nsMars, (*Handle).keyShortName},
	{"levtype", nsMars, (*Handle).keyLevtype},
	{"levelist", nsMars, (*Handle).keyLevel},
}

var keyIndex map[string]*keyDef

func init() {
	keyIndex = make(map[string]*keyDef, len(keyDefs))
	for i := range keyDefs {
		keyIndex[keyDefs[i].name] = &keyDefs[i]
	}
}

// lookup resolves a scalar key for this handle. The second return is false
// when the key is unknown or not defined for this message.
func (h *Handle) lookup(key string) (keyValue, bool) {
	def, ok := keyIndex[key]
	if !ok {
		return undefined()
	}
	return def.get(h)
}

func (h *Handle) keyCentre() (keyValue, bool) {
	if h.msg.id == nil {
		return undefined()
	}
	if name, ok := centreNames[h.msg.id.centre]; ok {
		return stringValue(name)
	}
	return stringValue(strconv.FormatUint(uint64(h.msg.id.centre), 10))
}

func (h *Handle) keyDataDate() (keyValue, bool) {
	if h.msg.id == nil {
		return undefined()
	}
	id := h.msg.id
	return longValue(int64(id.year)*10000 + int64(id.month)*100 + int64(id.day))
}

func (h *Handle) keyDataTime() (keyValue, bool) {
	if h.msg.id == nil {
		return undefined()
	}
	return longValue(int64(h.msg.id.hour)*100 + int64(h.msg.id.minute))
}

func (h *Handle) keyDataType() (keyValue, bool) {
	if h.msg.id == nil {
		return undefined()
	}
	switch h.msg.id.dataType {
	case 0:
		return stringValue("an")
	case 1:
		return stringValue("fc")
	case 2:
		return stringValue("af")
	case 3:
		return stringValue("cf")
	case 4:
		return stringValue("pf")
	}
	return stringValue("unknown")
}

func (h *Handle) keyStepRange() (keyValue, bool) {
	if h.msg.product == nil {
		return undefined()
	}
	return stringValue(strconv.FormatInt(h.msg.product.forecastTime, 10))
}

func (h *Handle) keyGridType() (keyValue, bool) {
	if h.msg.grid == nil {
		return undefined()
	}
	if h.msg.grid.templateNumber == 0 {
		return stringValue("regular_ll")
	}
	return stringValue("unknown")
}

func (h *Handle) keyNi() (keyValue, bool) {
	if h.msg.grid == nil || h.msg.grid.templateNumber != 0 {
		return undefined()
	}
	return longValue(int64(h.msg.grid.ni))
}

func (h *Handle) keyNj() (keyValue, bool) {
	if h.msg.grid == nil || h.msg.grid.templateNumber != 0 {
		return undefined()
	}
	return longValue(int64(h.msg.grid.nj))
}

func gridDegrees(field func(*gridDefinition) int64) func(*Handle) (keyValue, bool) {
	return func(h *Handle) (keyValue, bool) {
		if h.msg.grid == nil || h.msg.grid.templateNumber != 0 {
			return undefined()
		}
		return doubleValue(float64(field(h.msg.grid)) / 1e6)
	}
}

func (h *Handle) keyShortName() (keyValue, bool) {
	p, ok := h.parameter()
	if !ok {
		return undefined()
	}
	return stringValue(p.shortName)
}

func (h *Handle) keyName() (keyValue, bool) {
	p, ok := h.parameter()
	if !ok {
		return undefined()
	}
	return stringValue(p.name)
}

func (h *Handle) keyUnits() (keyValue, bool) {
	p, ok := h.parameter()
	if !ok {
		return undefined()
	}
	return stringValue(p.units)
}

func (h *Handle) keyPackingType() (keyValue, bool) {
	if h.msg.repr == nil {
		return undefined()
	}
	if h.msg.repr.templateNumber == 0 {
		return stringValue("grid_simple")
	}
	return stringValue("unknown")
}

func (h *Handle) keyTypeOfLevel() (keyValue, bool) {
	if h.msg.product == nil || h.msg.product.templateNumber != 0 {
		return undefined()
	}
	return stringValue(surfaceTypeName(h.msg.product.surfaceType))
}

func (h *Handle) keyLevel() (keyValue, bool) {
	if h.msg.product == nil || h.msg.product.templateNumber != 0 {
		return undefined()
	}
	return longValue(h.levelValue())
}

func (h *Handle) keyLevtype() (keyValue, bool) {
	if h.msg.product == nil || h.msg.product.templateNumber != 0 {
		return undefined()
	}
	switch h.msg.product.surfaceType {
	case 1:
		return stringValue("sfc")
	case 100:
		return stringValue("pl")
	case 101:
		return stringValue("sfc")
	case 103:
		return stringValue("sfc")
	case 105:
		return stringValue("ml")
	}
	return stringValue("unknown")
}

// levelValue derives the level from the scaled first fixed surface,
// converting pressure levels to hPa the way GRIB tools present them.
func (h *Handle) levelValue() int64 {
	p := h.msg.product
	v := int64(p.surfaceValue)
	scale := p.surfaceScale
	if scale != 0xff {
		for i := uint8(0); i < scale; i++ {
			v /= 10
		}
	}
	if p.surfaceType == 100 {
		v /= 100 // Pa to hPa
	}
	return v
}

func statistic(field func(*valueStats) float64) func(*Handle) (keyValue, bool) {
	return func(h *Handle) (keyValue, bool) {
		s, err := h.valueStatistics()
		if err != nil {
			return undefined()
		}
		return doubleValue(field(s))
	}
}

// KeyIterator walks the scalar keys defined for a handle, scoped to one
// namespace. It is a single-pass cursor over an engine resource and must be
// released by its owner; Next after Release reports exhaustion.
type KeyIterator struct {
	h        *Handle
	ns       nsMask
	i        int
	released bool
}

// NewKeyIterator creates an iterator over the keys defined for h within the
// named namespace. An unknown namespace name yields an empty iterator.
func (h *Handle) NewKeyIterator(namespace string) *KeyIterator {
	mask, ok := NamespaceMask(namespace)
	if !ok || h.released {
		return &KeyIterator{h: h, released: true}
	}
	return &KeyIterator{h: h, ns: mask}
}

// Next advances to the next defined key, returning its name.
func (it *KeyIterator) Next() (string, bool) {
	if it.released || it.h.released {
		return "", false
	}
	for it.i < len(keyDefs) {
		def := &keyDefs[it.i]
		it.i++
		if it.ns != 0 && def.ns&it.ns == 0 {
			continue
		}
		if _, ok := def.get(it.h); !ok {
			continue
		}
		return def.name, true
	}
	return "", false
}

// Release frees the iterator. Safe to call more than once.
func (it *KeyIterator) Release() {
	it.released = true
}
