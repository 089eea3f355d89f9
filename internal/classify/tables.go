package classify

import "github.com/karanvs/fintrail/internal/model"

// merchantEntry maps a lowercase keyword found in a merchant hint or message
// body to a category and a display name.
type merchantEntry struct {
	keyword  string
	display  string
	category string
}

// merchantTable is the static merchant lookup, grouped by category.
// Matching walks the table in order; earlier entries win.
var merchantTable = []merchantEntry{
	// Food & Dining
	{"swiggy", "Swiggy", model.CategoryFood},
	{"zomato", "Zomato", model.CategoryFood},
	{"dominos", "Domino's Pizza", model.CategoryFood},
	{"pizza hut", "Pizza Hut", model.CategoryFood},
	{"mcdonald", "McDonald's", model.CategoryFood},
	{"burger king", "Burger King", model.CategoryFood},
	{"kfc", "KFC", model.CategoryFood},
	{"subway", "Subway", model.CategoryFood},
	{"starbucks", "Starbucks", model.CategoryFood},
	{"cafe coffee day", "Cafe Coffee Day", model.CategoryFood},
	{"chaayos", "Chaayos", model.CategoryFood},
	{"haldiram", "Haldiram's", model.CategoryFood},
	{"wow momo", "Wow! Momo", model.CategoryFood},
	{"behrouz", "Behrouz Biryani", model.CategoryFood},
	{"faasos", "Faasos", model.CategoryFood},
	{"eatsure", "EatSure", model.CategoryFood},
	{"bigbasket", "BigBasket", model.CategoryFood},
	{"blinkit", "Blinkit", model.CategoryFood},
	{"zepto", "Zepto", model.CategoryFood},
	{"jiomart", "JioMart", model.CategoryFood},
	{"dmart", "DMart", model.CategoryFood},
	{"dunzo", "Dunzo", model.CategoryFood},

	// Transport
	{"uber", "Uber", model.CategoryTransport},
	{"ola", "Ola", model.CategoryTransport},
	{"rapido", "Rapido", model.CategoryTransport},
	{"irctc", "IRCTC", model.CategoryTransport},
	{"redbus", "redBus", model.CategoryTransport},
	{"makemytrip", "MakeMyTrip", model.CategoryTransport},
	{"goibibo", "Goibibo", model.CategoryTransport},
	{"cleartrip", "Cleartrip", model.CategoryTransport},
	{"indigo", "IndiGo", model.CategoryTransport},
	{"spicejet", "SpiceJet", model.CategoryTransport},
	{"air india", "Air India", model.CategoryTransport},
	{"vistara", "Vistara", model.CategoryTransport},
	{"fastag", "FASTag", model.CategoryTransport},
	{"indian oil", "Indian Oil", model.CategoryTransport},
	{"bharat petroleum", "Bharat Petroleum", model.CategoryTransport},
	{"hp petrol", "HP Petrol", model.CategoryTransport},
	{"shell", "Shell", model.CategoryTransport},

	// Shopping
	{"amazon", "Amazon", model.CategoryShopping},
	{"flipkart", "Flipkart", model.CategoryShopping},
	{"myntra", "Myntra", model.CategoryShopping},
	{"ajio", "AJIO", model.CategoryShopping},
	{"nykaa", "Nykaa", model.CategoryShopping},
	{"meesho", "Meesho", model.CategoryShopping},
	{"snapdeal", "Snapdeal", model.CategoryShopping},
	{"tata cliq", "Tata CLiQ", model.CategoryShopping},
	{"reliance trends", "Reliance Trends", model.CategoryShopping},
	{"shoppers stop", "Shoppers Stop", model.CategoryShopping},
	{"lifestyle", "Lifestyle", model.CategoryShopping},
	{"pantaloons", "Pantaloons", model.CategoryShopping},
	{"decathlon", "Decathlon", model.CategoryShopping},
	{"ikea", "IKEA", model.CategoryShopping},
	{"croma", "Croma", model.CategoryShopping},
	{"reliance digital", "Reliance Digital", model.CategoryShopping},
	{"vijay sales", "Vijay Sales", model.CategoryShopping},

	// Entertainment
	{"netflix", "Netflix", model.CategoryEntertainment},
	{"prime video", "Prime Video", model.CategoryEntertainment},
	{"hotstar", "Disney+ Hotstar", model.CategoryEntertainment},
	{"sony liv", "SonyLIV", model.CategoryEntertainment},
	{"zee5", "ZEE5", model.CategoryEntertainment},
	{"spotify", "Spotify", model.CategoryEntertainment},
	{"gaana", "Gaana", model.CategoryEntertainment},
	{"jiosaavn", "JioSaavn", model.CategoryEntertainment},
	{"wynk", "Wynk Music", model.CategoryEntertainment},
	{"bookmyshow", "BookMyShow", model.CategoryEntertainment},
	{"pvr", "PVR Cinemas", model.CategoryEntertainment},
	{"inox", "INOX", model.CategoryEntertainment},
	{"youtube premium", "YouTube Premium", model.CategoryEntertainment},
	{"playstation", "PlayStation", model.CategoryEntertainment},
	{"steam", "Steam", model.CategoryEntertainment},

	// Healthcare
	{"apollo", "Apollo", model.CategoryHealthcare},
	{"pharmeasy", "PharmEasy", model.CategoryHealthcare},
	{"netmeds", "Netmeds", model.CategoryHealthcare},
	{"1mg", "Tata 1mg", model.CategoryHealthcare},
	{"practo", "Practo", model.CategoryHealthcare},
	{"medplus", "MedPlus", model.CategoryHealthcare},
	{"fortis", "Fortis Healthcare", model.CategoryHealthcare},
	{"max hospital", "Max Hospital", model.CategoryHealthcare},
	{"thyrocare", "Thyrocare", model.CategoryHealthcare},
	{"dr lal", "Dr Lal PathLabs", model.CategoryHealthcare},

	// Utilities
	{"airtel", "Airtel", model.CategoryUtilities},
	{"jiofiber", "JioFiber", model.CategoryUtilities},
	{"vodafone", "Vodafone Idea", model.CategoryUtilities},
	{"bsnl", "BSNL", model.CategoryUtilities},
	{"tata power", "Tata Power", model.CategoryUtilities},
	{"adani electricity", "Adani Electricity", model.CategoryUtilities},
	{"bescom", "BESCOM", model.CategoryUtilities},
	{"mahadiscom", "Mahadiscom", model.CategoryUtilities},
	{"act fibernet", "ACT Fibernet", model.CategoryUtilities},
	{"hathway", "Hathway", model.CategoryUtilities},
	{"tata sky", "Tata Play", model.CategoryUtilities},
	{"dish tv", "Dish TV", model.CategoryUtilities},

	// Education
	{"byjus", "BYJU'S", model.CategoryEducation},
	{"unacademy", "Unacademy", model.CategoryEducation},
	{"vedantu", "Vedantu", model.CategoryEducation},
	{"coursera", "Coursera", model.CategoryEducation},
	{"udemy", "Udemy", model.CategoryEducation},
	{"upgrad", "upGrad", model.CategoryEducation},
	{"simplilearn", "Simplilearn", model.CategoryEducation},

	// Financial Services
	{"zerodha", "Zerodha", model.CategoryFinancial},
	{"groww", "Groww", model.CategoryFinancial},
	{"upstox", "Upstox", model.CategoryFinancial},
	{"paytm money", "Paytm Money", model.CategoryFinancial},
	{"kuvera", "Kuvera", model.CategoryFinancial},
	{"smallcase", "smallcase", model.CategoryFinancial},
	{"lic ", "LIC", model.CategoryFinancial},
	{"policybazaar", "Policybazaar", model.CategoryFinancial},
	{"bajaj finserv", "Bajaj Finserv", model.CategoryFinancial},
}

// categoryKeywords drives contextual keyword scoring. Iteration follows
// model.Categories() declaration order so ties resolve deterministically.
var categoryKeywords = map[string][]string{
	model.CategoryFood: {
		"restaurant", "food", "dining", "cafe", "coffee", "lunch",
		"dinner", "breakfast", "meal", "grocery", "groceries", "kitchen",
	},
	model.CategoryTransport: {
		"taxi", "cab", "ride", "fuel", "petrol", "diesel", "parking",
		"toll", "bus", "train", "flight", "metro", "travel",
	},
	model.CategoryShopping: {
		"purchase", "shopping", "store", "mall", "order", "retail",
		"apparel", "fashion", "electronics",
	},
	model.CategoryEntertainment: {
		"movie", "cinema", "game", "gaming", "music", "subscription",
		"streaming", "ticket", "concert",
	},
	model.CategoryHealthcare: {
		"hospital", "doctor", "pharmacy", "medicine", "medical",
		"clinic", "health", "diagnostic", "dental", "lab",
	},
	model.CategoryUtilities: {
		"electricity", "water", "gas", "internet", "broadband",
		"mobile", "recharge", "bill", "dth", "postpaid", "prepaid",
	},
	model.CategoryEducation: {
		"school", "college", "university", "tuition", "course", "fees",
		"exam", "books", "library",
	},
	model.CategoryFinancial: {
		"loan", "emi", "insurance", "premium", "mutual fund", "sip",
		"investment", "brokerage", "interest", "fixed deposit",
	},
}

// billKeywords decide the Utilities branch of the amount ladder.
var billKeywords = []string{"bill", "recharge", "electricity", "broadband", "postpaid", "dth"}

// directionKeyword contributes a fixed weight to the income or expense
// score accumulator.
type directionKeyword struct {
	keyword   string
	direction model.Direction
	weight    int
}

var directionKeywords = []directionKeyword{
	{"debited", model.DirectionExpense, 3},
	{"paid", model.DirectionExpense, 2},
	{"spent", model.DirectionExpense, 2},
	{"withdrawn", model.DirectionExpense, 2},
	{"purchase", model.DirectionExpense, 2},
	{"deducted", model.DirectionExpense, 2},
	{"charged", model.DirectionExpense, 2},
	{"sent", model.DirectionExpense, 1},
	{"transferred", model.DirectionExpense, 1},
	{"payment", model.DirectionExpense, 1},
	{"credited", model.DirectionIncome, 3},
	{"salary", model.DirectionIncome, 3},
	{"received", model.DirectionIncome, 2},
	{"deposited", model.DirectionIncome, 2},
	{"refund", model.DirectionIncome, 2},
	{"cashback", model.DirectionIncome, 1},
	{"interest", model.DirectionIncome, 1},
	{"added", model.DirectionIncome, 1},
}

// directionCompound adds extra weight when both fragments appear. This is
// what lets "debited from your account ... credited to merchant" resolve as
// an expense despite the competing keyword.
type directionCompound struct {
	first     string
	second    string
	direction model.Direction
	weight    int
}

var directionCompounds = []directionCompound{
	// Outweighs "credited" plus its compound so a debit alert that
	// mentions the credited counterparty still resolves to expense.
	{"debited", "your account", model.DirectionExpense, 3},
	{"credited", "to your account", model.DirectionIncome, 2},
	{"received", "from", model.DirectionIncome, 1},
	{"paid", "towards", model.DirectionExpense, 1},
}
