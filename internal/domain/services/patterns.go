package services

import (
	"regexp"

	"scambait/internal/domain/models"
)

// KeywordClass is a weighted group of indicator keywords tied to a
// scam category. Any keyword hit contributes the class weight once.
type KeywordClass struct {
	Name     string
	Category models.ScamCategory
	Weight   int
	Keywords []string
}

// Signature is a known scam message recorded as a normalized
// fingerprint, used by the dataset stage for exact and fuzzy matching.
type Signature struct {
	ID         string
	Category   models.ScamCategory
	Confidence int
	Text       string
	// derived at load time
	Fingerprint string
	Tokens      []string
}

// PatternLibrary is the static indicator data shared by the detection,
// extraction and URL services. Built once at startup and treated as
// read-only afterwards.
type PatternLibrary struct {
	KeywordClasses []KeywordClass
	Signatures     []Signature

	BlacklistedDomains map[string]bool
	SuspiciousTLDs     map[string]bool
	HostingPatterns    []string
	SuspiciousKeywords []string
	Shorteners         map[string]bool
	Brands             []string

	// compiled structural patterns
	UPIPattern     *regexp.Regexp
	AccountPattern *regexp.Regexp
	PhonePattern   *regexp.Regexp
	URLPattern     *regexp.Regexp
	IFSCPattern    *regexp.Regexp
}

// NewPatternLibrary builds the default indicator set.
func NewPatternLibrary() *PatternLibrary {
	lib := &PatternLibrary{
		KeywordClasses: []KeywordClass{
			{
				Name:     "urgency",
				Category: models.CategoryOther,
				Weight:   20,
				Keywords: []string{
					"urgent", "immediately", "act now", "expires today", "last chance",
					"limited time", "within 24 hours", "right now", "hurry",
				},
			},
			{
				// payment-ask language shows up in every scam family,
				// so this class scores but votes neutral
				Name:     "financial",
				Category: models.CategoryOther,
				Weight:   25,
				Keywords: []string{
					"transfer", "payment", "deposit", "processing fee", "registration fee",
					"send money", "pay now", "upi", "paytm", "gpay", "phonepe",
				},
			},
			{
				Name:     "authority",
				Category: models.CategoryBank,
				Weight:   30,
				Keywords: []string{
					"bank official", "rbi", "income tax", "government", "customs",
					"police department", "account blocked", "account suspended",
					"kyc", "verify your account", "otp",
				},
			},
			{
				Name:     "lottery",
				Category: models.CategoryLottery,
				Weight:   35,
				Keywords: []string{
					"lottery", "lucky draw", "jackpot", "won", "winner",
					"congratulations", "prize money", "claim your",
				},
			},
			{
				Name:     "prize",
				Category: models.CategoryPrize,
				Weight:   35,
				Keywords: []string{
					"free gift", "reward", "cashback", "bonus", "voucher",
					"gift card", "you have been selected",
				},
			},
			{
				Name:     "job",
				Category: models.CategoryJob,
				Weight:   25,
				Keywords: []string{
					"work from home", "part time job", "earn daily", "no experience",
					"hiring", "salary", "easy income", "per day income",
				},
			},
			{
				Name:     "tech_support",
				Category: models.CategoryTechSupport,
				Weight:   25,
				Keywords: []string{
					"virus detected", "your computer", "microsoft support",
					"remote access", "anydesk", "teamviewer", "tech support",
					"device compromised",
				},
			},
			{
				Name:     "romance",
				Category: models.CategoryRomance,
				Weight:   20,
				Keywords: []string{
					"my dear", "lonely", "soulmate", "true love", "meet you",
					"stuck abroad", "need your help my love",
				},
			},
		},
		BlacklistedDomains: map[string]bool{
			"phishing-site.com":      true,
			"secure-bank-verify.com": true,
			"lottery-winner.net":     true,
			"kyc-update-online.com":  true,
			"free-gift-claim.xyz":    true,
			"upi-refund-portal.in":   true,
		},
		SuspiciousTLDs: map[string]bool{
			".tk": true, ".ml": true, ".ga": true, ".cf": true, ".gq": true,
			".xyz": true, ".top": true, ".click": true, ".loan": true,
			".work": true, ".buzz": true,
		},
		HostingPatterns: []string{
			".000webhostapp.com", ".weebly.com", ".wixsite.com",
			".blogspot.", ".github.io", ".netlify.app", ".web.app",
			".herokuapp.com", ".vercel.app",
		},
		SuspiciousKeywords: []string{
			"login", "verify", "secure", "account", "update", "confirm",
			"banking", "wallet", "kyc", "refund", "claim", "prize", "free",
		},
		Shorteners: map[string]bool{
			"bit.ly": true, "tinyurl.com": true, "goo.gl": true,
			"t.co": true, "is.gd": true, "cutt.ly": true, "rb.gy": true,
			"rebrand.ly": true, "shorturl.at": true,
		},
		Brands: []string{
			"paypal", "amazon", "google", "microsoft", "apple", "netflix",
			"flipkart", "paytm", "sbi", "hdfc", "icici", "axis",
		},
		UPIPattern:     regexp.MustCompile(`\b[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}\b`),
		AccountPattern: regexp.MustCompile(`\b\d{9,18}\b`),
		PhonePattern:   regexp.MustCompile(`\+91[\-\s]?[6-9]\d{9}\b|\b[6-9]\d{9}\b`),
		URLPattern:     regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+|\b[a-z0-9][a-z0-9\-]*(?:\.[a-z0-9\-]+)+(?:/[^\s<>"']*)?`),
		IFSCPattern:    regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`),
	}

	lib.Signatures = loadDefaultSignatures()
	for i := range lib.Signatures {
		fp, tokens := Fingerprint(lib.Signatures[i].Text)
		lib.Signatures[i].Fingerprint = fp
		lib.Signatures[i].Tokens = tokens
	}

	return lib
}

// loadDefaultSignatures seeds the catalog with messages seen in the
// wild. A real deployment would append feed-sourced entries here.
func loadDefaultSignatures() []Signature {
	return []Signature{
		{
			ID:         "sig-lottery-001",
			Category:   models.CategoryLottery,
			Confidence: 95,
			Text:       "Congratulations! You have won Rs 2500000 in the KBC lucky draw. To claim your prize money send your bank account number and pay registration fee of Rs 5000.",
		},
		{
			ID:         "sig-lottery-002",
			Category:   models.CategoryLottery,
			Confidence: 90,
			Text:       "Dear customer your mobile number has won 25 lakh in WhatsApp lucky draw lottery. Contact our office immediately to claim.",
		},
		{
			ID:         "sig-bank-001",
			Category:   models.CategoryBank,
			Confidence: 95,
			Text:       "Your SBI account has been suspended due to incomplete KYC. Update immediately by clicking the link or your account will be blocked within 24 hours.",
		},
		{
			ID:         "sig-bank-002",
			Category:   models.CategoryBank,
			Confidence: 90,
			Text:       "Dear customer your bank account will be blocked today. Share OTP received on your number to verify and keep your account active.",
		},
		{
			ID:         "sig-job-001",
			Category:   models.CategoryJob,
			Confidence: 85,
			Text:       "Work from home opportunity. Earn 5000 per day with no experience. Part time job, just 2 hours daily. Registration fee 500 only.",
		},
		{
			ID:         "sig-prize-001",
			Category:   models.CategoryPrize,
			Confidence: 85,
			Text:       "You have been selected for a free gift voucher worth Rs 10000 from Amazon. Claim now before the offer expires today.",
		},
		{
			ID:         "sig-tech-001",
			Category:   models.CategoryTechSupport,
			Confidence: 90,
			Text:       "Virus detected on your computer. Your device is compromised. Call Microsoft support immediately and install AnyDesk for remote access.",
		},
	}
}
