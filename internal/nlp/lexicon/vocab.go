package lexicon

// Category selects a domain vocabulary.
type Category string

const (
	CategoryLocation  Category = "location"
	CategoryCrop      Category = "crop"
	CategoryCommodity Category = "commodity"
	CategoryDate      Category = "date"
)

// entry maps a canonical value to its known surface variants: Devanagari
// spellings, romanized Hindi, and common typo-bait forms seen in field
// queries.
type entry struct {
	canonical string
	aliases   []string
}

var locationVocab = []entry{
	{"Agra", []string{"agra", "आगरा"}},
	{"Ahmedabad", []string{"ahmedabad", "amdavad", "अहमदाबाद"}},
	{"Amritsar", []string{"amritsar", "अमृतसर"}},
	{"Bengaluru", []string{"bengaluru", "bangalore", "बेंगलुरु"}},
	{"Bhopal", []string{"bhopal", "भोपाल"}},
	{"Chandigarh", []string{"chandigarh", "चंडीगढ़"}},
	{"Chennai", []string{"chennai", "madras", "चेन्नई"}},
	{"Delhi", []string{"delhi", "dilli", "दिल्ली", "new delhi"}},
	{"Guwahati", []string{"guwahati", "गुवाहाटी"}},
	{"Hyderabad", []string{"hyderabad", "हैदराबाद"}},
	{"Indore", []string{"indore", "इंदौर"}},
	{"Jaipur", []string{"jaipur", "जयपुर"}},
	{"Kanpur", []string{"kanpur", "कानपुर"}},
	{"Kolkata", []string{"kolkata", "calcutta", "कोलकाता"}},
	{"Lucknow", []string{"lucknow", "लखनऊ"}},
	{"Ludhiana", []string{"ludhiana", "लुधियाना"}},
	{"Mumbai", []string{"mumbai", "bombay", "मुंबई"}},
	{"Nagpur", []string{"nagpur", "नागपुर"}},
	{"Nashik", []string{"nashik", "nasik", "नासिक"}},
	{"Patna", []string{"patna", "पटना"}},
	{"Pune", []string{"pune", "पुणे"}},
	{"Raebareli", []string{"raebareli", "rae bareli", "raibareli", "रायबरेली"}},
	{"Raipur", []string{"raipur", "रायपुर"}},
	{"Ranchi", []string{"ranchi", "रांची"}},
	{"Surat", []string{"surat", "सूरत"}},
	{"Varanasi", []string{"varanasi", "banaras", "वाराणसी"}},
}

var cropVocab = []entry{
	{"bajra", []string{"bajra", "pearl millet", "बाजरा"}},
	{"banana", []string{"banana", "kela", "केला"}},
	{"chickpea", []string{"chickpea", "chana", "gram", "चना"}},
	{"cotton", []string{"cotton", "kapas", "कपास"}},
	{"groundnut", []string{"groundnut", "peanut", "moongphali", "मूंगफली"}},
	{"maize", []string{"maize", "corn", "makka", "makai", "मक्का"}},
	{"mustard", []string{"mustard", "sarson", "सरसों"}},
	{"onion", []string{"onion", "pyaz", "pyaaz", "प्याज"}},
	{"potato", []string{"potato", "aloo", "alu", "आलू"}},
	{"rice", []string{"rice", "paddy", "chawal", "dhan", "चावल", "धान"}},
	{"soybean", []string{"soybean", "soyabean", "सोयाबीन"}},
	{"sugarcane", []string{"sugarcane", "ganna", "गन्ना"}},
	{"tomato", []string{"tomato", "tamatar", "टमाटर"}},
	{"wheat", []string{"wheat", "gehu", "gehun", "gehoon", "गेहूं", "गेहू"}},
}

// Commodities traded in mandis: every crop plus market-only items.
var commodityVocab = append([]entry{
	{"garlic", []string{"garlic", "lahsun", "लहसुन"}},
	{"turmeric", []string{"turmeric", "haldi", "हल्दी"}},
}, cropVocab...)

var dateVocab = []entry{
	{"today", []string{"today", "aaj", "आज"}},
	{"tomorrow", []string{"tomorrow", "kal", "कल"}},
	{"kharif", []string{"kharif", "खरीफ", "monsoon season"}},
	{"rabi", []string{"rabi", "रबी", "winter season"}},
	{"zaid", []string{"zaid", "zayad", "जायद", "summer season"}},
}

func vocabulary(cat Category) []entry {
	switch cat {
	case CategoryLocation:
		return locationVocab
	case CategoryCrop:
		return cropVocab
	case CategoryCommodity:
		return commodityVocab
	case CategoryDate:
		return dateVocab
	}
	return nil
}
