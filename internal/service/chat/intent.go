package chat

import "strings"

const (
	IntentGreeting       = "greeting"
	IntentPricing        = "pricing"
	IntentContactRequest = "contact_request"
	IntentRegistration   = "registration"
	IntentSupport        = "support"
	IntentProductInfo    = "product_info"
	IntentGeneralInquiry = "general_inquiry"
)

type keywordRule struct {
	keywords []string
	result   string
}

func (r keywordRule) matches(lowered string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Ordered by priority; the first matching rule wins.
var intentRules = []keywordRule{
	{keywords: []string{"hola", "buenos", "buenas"}, result: IntentGreeting},
	{keywords: []string{"precio", "costo", "cuánto"}, result: IntentPricing},
	{keywords: []string{"contacto", "hablar", "llamar"}, result: IntentContactRequest},
	{keywords: []string{"registro", "registrar", "cuenta"}, result: IntentRegistration},
	{keywords: []string{"ayuda", "soporte", "problema"}, result: IntentSupport},
	{keywords: []string{"producto", "servicio", "qué hacen"}, result: IntentProductInfo},
}

// ClassifyIntent tags a message with a coarse intent using case-insensitive
// substring rules.
func ClassifyIntent(message string) string {
	return firstMatch(intentRules, message, IntentGeneralInquiry)
}

func firstMatch(rules []keywordRule, message, fallback string) string {
	lowered := strings.ToLower(message)
	for _, rule := range rules {
		if rule.matches(lowered) {
			return rule.result
		}
	}
	return fallback
}
