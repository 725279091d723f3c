package nfl

import "strings"

// teamAliases maps every spelling the feeds produce to one canonical
// abbreviation. Keys are uppercase. Sleeper and ESPN disagree on a handful of
// codes (WAS/WSH, JAC/JAX, LA/LAR), the odds feed sends full display names,
// and the rankings feed sends "City Name" strings; they all land here.
var teamAliases = map[string]string{
	"49ERS": "SF", "SAN FRANCISCO 49ERS": "SF", "SAN FRANCISCO": "SF",
	"BEARS": "CHI", "CHICAGO BEARS": "CHI",
	"BENGALS": "CIN", "CINCINNATI BENGALS": "CIN",
	"BILLS": "BUF", "BUFFALO BILLS": "BUF",
	"BRONCOS": "DEN", "DENVER BRONCOS": "DEN",
	"BROWNS": "CLE", "CLEVELAND BROWNS": "CLE",
	"BUCCANEERS": "TB", "TAMPA BAY BUCCANEERS": "TB", "TAMPA BAY": "TB",
	"CARDINALS": "ARI", "ARIZONA CARDINALS": "ARI",
	"CHARGERS": "LAC", "LOS ANGELES CHARGERS": "LAC", "SD": "LAC",
	"CHIEFS": "KC", "KANSAS CITY CHIEFS": "KC", "KANSAS CITY": "KC",
	"COLTS": "IND", "INDIANAPOLIS COLTS": "IND",
	"COMMANDERS": "WSH", "WASHINGTON COMMANDERS": "WSH", "WASHINGTON": "WSH", "WAS": "WSH",
	"COWBOYS": "DAL", "DALLAS COWBOYS": "DAL",
	"DOLPHINS": "MIA", "MIAMI DOLPHINS": "MIA",
	"EAGLES": "PHI", "PHILADELPHIA EAGLES": "PHI",
	"FALCONS": "ATL", "ATLANTA FALCONS": "ATL",
	"GIANTS": "NYG", "NEW YORK GIANTS": "NYG",
	"JAGUARS": "JAX", "JACKSONVILLE JAGUARS": "JAX", "JAC": "JAX",
	"JETS": "NYJ", "NEW YORK JETS": "NYJ",
	"LIONS": "DET", "DETROIT LIONS": "DET",
	"PACKERS": "GB", "GREEN BAY PACKERS": "GB", "GREEN BAY": "GB",
	"PANTHERS": "CAR", "CAROLINA PANTHERS": "CAR",
	"PATRIOTS": "NE", "NEW ENGLAND PATRIOTS": "NE", "NEW ENGLAND": "NE",
	"RAIDERS": "LV", "LAS VEGAS RAIDERS": "LV", "LAS VEGAS": "LV", "OAK": "LV",
	"RAMS": "LAR", "LOS ANGELES RAMS": "LAR", "LA": "LAR", "STL": "LAR",
	"RAVENS": "BAL", "BALTIMORE RAVENS": "BAL",
	"SAINTS": "NO", "NEW ORLEANS SAINTS": "NO", "NEW ORLEANS": "NO",
	"SEAHAWKS": "SEA", "SEATTLE SEAHAWKS": "SEA",
	"STEELERS": "PIT", "PITTSBURGH STEELERS": "PIT",
	"TEXANS": "HOU", "HOUSTON TEXANS": "HOU",
	"TITANS": "TEN", "TENNESSEE TITANS": "TEN",
	"VIKINGS": "MIN", "MINNESOTA VIKINGS": "MIN",
}

// ResolveTeam maps any known team spelling (full name, nickname, city, or
// abbreviation, any case) to its canonical abbreviation. Unknown input is
// returned uppercased/trimmed rather than dropped; callers treat such keys
// as possibly-unmatched and still score the record. This is the only place
// fuzzy team matching is allowed.
func ResolveTeam(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return key
	}
	if abbr, ok := teamAliases[key]; ok {
		return abbr
	}
	// "City Nickname" patterns the alias table missed: match on the last
	// whitespace-delimited token ("St. Louis Rams" -> "RAMS").
	if idx := strings.LastIndexByte(key, ' '); idx >= 0 {
		if abbr, ok := teamAliases[key[idx+1:]]; ok {
			return abbr
		}
	}
	return key
}

// TeamsMatch reports whether two spellings refer to the same franchise.
func TeamsMatch(a, b string) bool {
	return ResolveTeam(a) == ResolveTeam(b)
}

// domeTeams marks home venues that play indoors on game day, including
// retractables operated closed. Fallback only; an explicit venue indoor flag
// from the schedule feed wins.
var domeTeams = map[string]bool{
	"ARI": true, // State Farm Stadium (retractable)
	"ATL": true, // Mercedes-Benz Stadium (retractable)
	"DAL": true, // AT&T Stadium (retractable)
	"DET": true, // Ford Field
	"HOU": true, // NRG Stadium (retractable)
	"IND": true, // Lucas Oil Stadium (retractable)
	"LAC": true, // SoFi Stadium (shared)
	"LAR": true, // SoFi Stadium
	"LV":  true, // Allegiant Stadium
	"MIN": true, // U.S. Bank Stadium
	"NO":  true, // Caesars Superdome
}

// IsDomeTeam reports whether the given home team plays in a dome.
func IsDomeTeam(team string) bool {
	return domeTeams[ResolveTeam(team)]
}

// Stadium holds the venue location used for weather lookups.
type Stadium struct {
	Name   string
	Lat    float64
	Lon    float64
	Indoor bool
}

// Stadiums indexes every franchise's home venue by canonical abbreviation.
var Stadiums = map[string]Stadium{
	"ARI": {Name: "State Farm Stadium", Lat: 33.5276, Lon: -112.2626, Indoor: true},
	"ATL": {Name: "Mercedes-Benz Stadium", Lat: 33.7554, Lon: -84.4008, Indoor: true},
	"BAL": {Name: "M&T Bank Stadium", Lat: 39.2780, Lon: -76.6227, Indoor: false},
	"BUF": {Name: "Highmark Stadium", Lat: 42.7738, Lon: -78.7870, Indoor: false},
	"CAR": {Name: "Bank of America Stadium", Lat: 35.2258, Lon: -80.8528, Indoor: false},
	"CHI": {Name: "Soldier Field", Lat: 41.8623, Lon: -87.6167, Indoor: false},
	"CIN": {Name: "Paycor Stadium", Lat: 39.0954, Lon: -84.5161, Indoor: false},
	"CLE": {Name: "Cleveland Browns Stadium", Lat: 41.5061, Lon: -81.6995, Indoor: false},
	"DAL": {Name: "AT&T Stadium", Lat: 32.7473, Lon: -97.0945, Indoor: true},
	"DEN": {Name: "Empower Field at Mile High", Lat: 39.7439, Lon: -105.0201, Indoor: false},
	"DET": {Name: "Ford Field", Lat: 42.3400, Lon: -83.0456, Indoor: true},
	"GB":  {Name: "Lambeau Field", Lat: 44.5013, Lon: -88.0622, Indoor: false},
	"HOU": {Name: "NRG Stadium", Lat: 29.6847, Lon: -95.4107, Indoor: true},
	"IND": {Name: "Lucas Oil Stadium", Lat: 39.7601, Lon: -86.1639, Indoor: true},
	"JAX": {Name: "EverBank Stadium", Lat: 30.3239, Lon: -81.6373, Indoor: false},
	"KC":  {Name: "GEHA Field at Arrowhead", Lat: 39.0489, Lon: -94.4839, Indoor: false},
	"LAC": {Name: "SoFi Stadium", Lat: 33.9535, Lon: -118.3392, Indoor: true},
	"LAR": {Name: "SoFi Stadium", Lat: 33.9535, Lon: -118.3392, Indoor: true},
	"LV":  {Name: "Allegiant Stadium", Lat: 36.0909, Lon: -115.1833, Indoor: true},
	"MIA": {Name: "Hard Rock Stadium", Lat: 25.9580, Lon: -80.2389, Indoor: false},
	"MIN": {Name: "U.S. Bank Stadium", Lat: 44.9736, Lon: -93.2575, Indoor: true},
	"NE":  {Name: "Gillette Stadium", Lat: 42.0909, Lon: -71.2643, Indoor: false},
	"NO":  {Name: "Caesars Superdome", Lat: 29.9511, Lon: -90.0812, Indoor: true},
	"NYG": {Name: "MetLife Stadium", Lat: 40.8136, Lon: -74.0744, Indoor: false},
	"NYJ": {Name: "MetLife Stadium", Lat: 40.8136, Lon: -74.0744, Indoor: false},
	"PHI": {Name: "Lincoln Financial Field", Lat: 39.9008, Lon: -75.1675, Indoor: false},
	"PIT": {Name: "Acrisure Stadium", Lat: 40.4468, Lon: -80.0158, Indoor: false},
	"SEA": {Name: "Lumen Field", Lat: 47.5952, Lon: -122.3316, Indoor: false},
	"SF":  {Name: "Levi's Stadium", Lat: 37.4030, Lon: -121.9700, Indoor: false},
	"TB":  {Name: "Raymond James Stadium", Lat: 27.9759, Lon: -82.5033, Indoor: false},
	"TEN": {Name: "Nissan Stadium", Lat: 36.1665, Lon: -86.7713, Indoor: false},
	"WSH": {Name: "Northwest Stadium", Lat: 38.9076, Lon: -76.8645, Indoor: false},
}

// StadiumFor looks up the home venue for any team spelling.
func StadiumFor(team string) (Stadium, bool) {
	st, ok := Stadiums[ResolveTeam(team)]
	return st, ok
}
