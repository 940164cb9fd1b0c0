package analyzer

// Keyword tables for the deterministic conversation analysis. These are
// ordered data structures on purpose: matching priority is defined by slice
// order, not by code order, so it stays visible and testable.

// vehicleMakes are the manufacturer names recognized by vehicle extraction.
var vehicleMakes = []string{
	"toyota", "honda", "ford", "chevrolet", "chevy", "nissan", "hyundai",
	"kia", "bmw", "mercedes", "audi", "volkswagen", "subaru", "mazda",
	"jeep", "tesla", "lexus", "dodge", "ram", "gmc", "buick", "acura",
	"volvo", "chrysler",
}

// vehicleModels is the curated bare-model list, checked only after the
// composite year/make patterns fail.
var vehicleModels = []string{
	"prius", "camry", "corolla", "rav4", "highlander", "tacoma", "tundra",
	"civic", "accord", "cr-v", "crv", "pilot", "odyssey",
	"f-150", "f150", "mustang", "escape", "explorer", "bronco",
	"silverado", "equinox", "tahoe", "malibu",
	"altima", "rogue", "sentra", "pathfinder",
	"elantra", "tucson", "sonata", "santa fe",
	"sorento", "sportage", "telluride",
	"outback", "forester", "crosstrek",
	"wrangler", "grand cherokee", "cherokee",
	"model 3", "model y", "model s", "model x",
}

// urgentWindowWords map to the "Immediate (within days)" purchase window.
var urgentWindowWords = []string{
	"asap", "urgent", "today", "tomorrow", "this week", "emergency",
	"right away", "immediately",
}

// nearTermWindowWords map to the "Near-term (within weeks)" purchase window.
var nearTermWindowWords = []string{
	"next week", "this month", "soon", "schedule", "appointment",
	"come in", "stop by",
}

// Purchase-window labels form a small closed set.
const (
	WindowImmediate = "Immediate (within days)"
	WindowNearTerm  = "Near-term (within weeks)"
	WindowSpecific  = "Specific timeframe mentioned"
	WindowUnclear   = "Timeline unclear - ask for urgency"
)

// Intent vocabulary. Categories are checked in this order and every matching
// category is reported, not just the first.
const (
	IntentPricing     = "pricing"
	IntentScheduling  = "scheduling"
	IntentComparison  = "comparison"
	IntentTechnical   = "technical"
	IntentPurchase    = "purchase"
	IntentInformation = "information"
	IntentGeneral     = "general_inquiry"
)

type intentCategory struct {
	name     string
	keywords []string
}

var intentCategories = []intentCategory{
	{IntentPricing, []string{
		"price", "cost", "how much", "payment", "monthly", "afford",
		"discount", "deal", "msrp",
	}},
	{IntentScheduling, []string{
		"schedule", "appointment", "test drive", "visit", "come in",
		"when can", "available time", "book",
	}},
	{IntentComparison, []string{
		"compare", "vs", "versus", "difference", "better than",
		"other dealer", "competitor",
	}},
	{IntentTechnical, []string{
		"mpg", "fuel", "engine", "features", "specs", "safety",
		"warranty", "mileage", "horsepower",
	}},
	{IntentPurchase, []string{
		"buy", "purchase", "ready to", "take it", "sign", "put down",
		"make an offer",
	}},
	{IntentInformation, []string{
		"information", "details", "tell me more", "learn more",
		"brochure", "question about",
	}},
}

// highUrgencyWords drive the "high" urgency level; checked before medium.
var highUrgencyWords = []string{
	"asap", "urgent", "immediately", "today", "right away", "emergency",
	"right now", "as soon as possible",
}

// mediumUrgencyWords drive the "medium" urgency level.
var mediumUrgencyWords = []string{
	"soon", "this week", "quickly", "shortly", "in a few days",
	"next few days",
}

// competitorSignals flag cross-shopping in the conversation.
var competitorSignals = []string{
	"carmax", "carvana", "another dealer", "other dealership",
	"another dealership", "other dealers", "competitor", "quote from",
	"better offer",
}
