package answer

import "strings"

// OffDomainReply is the canned redirect for queries IsInDomain rejects.
const OffDomainReply = "Please ask a medical-related question. I'm specialized in providing medical information from my knowledge base."

// DomainIndicators route a query to the pipeline when any occurs in it.
var DomainIndicators = []string{
	"symptom", "disease", "condition", "treatment", "medicine", "medication",
	"diagnosis", "doctor", "hospital", "pain", "fever", "infection",
	"medical", "health", "illness", "therapy", "surgery", "procedure",
	"blood", "heart", "lung", "brain", "liver", "kidney", "cancer",
	"diabetes", "hypertension", "pneumonia", "what is", "how to treat",
	"causes of", "prevention", "cure", "relief",
}

// IsInDomain reports whether query looks medical. It is a cheap pre-filter
// that lets a front end answer off-topic queries without touching the index.
func IsInDomain(query string) bool {
	lower := strings.ToLower(query)
	for _, indicator := range DomainIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
