// Package geo maps named administrative regions to representative WGS 84
// coordinates. The table is a coarse location proxy used at registration
// time; it is fixed and covers the 24 regions the frontend offers.
package geo

// Point is a WGS 84 (longitude, latitude) pair.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// regionCoordinates maps region names to their representative coordinates.
var regionCoordinates = map[string]Point{
	"Вінницька область":         {28.4682, 49.2331},
	"Волинська область":         {25.3254, 50.7472},
	"Дніпропетровська область":  {35.0462, 48.4647},
	"Донецька область":          {37.8028, 48.0159},
	"Житомирська область":       {28.6687, 50.2547},
	"Закарпатська область":      {22.2879, 48.6208},
	"Запорізька область":        {35.1396, 47.8388},
	"Івано-Франківська область": {24.7111, 48.9226},
	"Київ (місто)":              {30.5234, 50.4501},
	"Київська область":          {30.5234, 50.4501},
	"Кіровоградська область":    {32.2623, 48.5079},
	"Львівська область":         {24.0297, 49.8397},
	"Миколаївська область":      {31.9946, 46.9750},
	"Одеська область":           {30.7233, 46.4825},
	"Полтавська область":        {34.5514, 49.5883},
	"Рівненська область":        {26.2516, 50.6199},
	"Сумська область":           {34.7981, 50.9077},
	"Тернопільська область":     {25.5948, 49.5535},
	"Харківська область":        {36.2304, 49.9935},
	"Херсонська область":        {32.6169, 46.6354},
	"Хмельницька область":       {26.9871, 49.4230},
	"Черкаська область":         {32.0637, 49.4444},
	"Чернівецька область":       {25.9355, 48.2921},
	"Чернігівська область":      {31.2893, 51.4982},
}

// Lookup resolves a region name to its representative point.
// Unknown names return ok=false; callers decide whether that is an error.
func Lookup(region string) (Point, bool) {
	p, ok := regionCoordinates[region]
	return p, ok
}

// Regions returns the number of known regions.
func Regions() int {
	return len(regionCoordinates)
}
