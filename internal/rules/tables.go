package rules

var defaultVIPTitles = []string{
	"ceo", "cto", "cfo", "coo", "cmo", "ciso",
	"chief", "founder", "co-founder", "president", "owner", "partner",
}

var defaultSeniorTitles = []string{
	"vp", "vice president", "director", "head of", "general manager", "principal",
}

var defaultCompetitors = []string{
	"salesforce", "hubspot", "pipedrive", "zoho", "freshsales",
	"close.io", "copper", "insightly", "zendesk sell", "monday.com",
}

// Leading-3-digit ZIP prefixes for the states sales routing cares about.
// Anything unmatched stays unassigned and routes to the default pool.
var defaultZipPrefixStates = map[string]string{
	"100": "NY", "101": "NY", "102": "NY", "112": "NY", "117": "NY",
	"021": "MA", "022": "MA", "024": "MA",
	"191": "PA", "152": "PA",
	"070": "NJ", "088": "NJ",
	"200": "DC",
	"303": "GA", "305": "GA",
	"331": "FL", "327": "FL", "336": "FL",
	"370": "TN",
	"750": "TX", "770": "TX", "787": "TX", "782": "TX",
	"850": "AZ",
	"800": "CO", "802": "CO",
	"600": "IL", "606": "IL",
	"480": "MI",
	"430": "OH", "441": "OH",
	"530": "WI",
	"550": "MN",
	"631": "MO",
	"900": "CA", "901": "CA", "902": "CA", "941": "CA", "940": "CA", "945": "CA", "950": "CA",
	"970": "OR", "972": "OR",
	"980": "WA", "981": "WA",
	"890": "NV",
	"840": "UT",
}

var defaultStateRegions = map[string]string{
	"CA": "west", "OR": "west", "WA": "west", "NV": "west", "UT": "west",
	"AZ": "west", "CO": "west",
	"IL": "midwest", "MI": "midwest", "OH": "midwest", "WI": "midwest",
	"MN": "midwest", "MO": "midwest",
	"TX": "south", "GA": "south", "FL": "south", "TN": "south",
	"NY": "northeast", "MA": "northeast", "PA": "northeast", "NJ": "northeast",
	"DC": "northeast",
}

var defaultRegionReps = map[string]string{
	"west":      "west-pod",
	"midwest":   "midwest-pod",
	"south":     "south-pod",
	"northeast": "northeast-pod",
}

// DefaultRegion routes contacts with no territory match.
const DefaultRegion = "unassigned"

// DefaultRep is the catch-all routing pool.
const DefaultRep = "round-robin-pool"
