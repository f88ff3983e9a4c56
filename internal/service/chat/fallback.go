package chat

const (
	msgFallbackGreeting   = "FallbackGreeting"
	msgFallbackPricing    = "FallbackPricing"
	msgFallbackContact    = "FallbackContact"
	msgFallbackProcessing = "FallbackProcessing"
)

// Canned replies used while the automation service is unavailable. These
// keywords are matched independently from intent classification.
var fallbackRules = []keywordRule{
	{keywords: []string{"hola", "buenos"}, result: msgFallbackGreeting},
	{keywords: []string{"precio", "costo"}, result: msgFallbackPricing},
	{keywords: []string{"contacto", "hablar"}, result: msgFallbackContact},
}

// Localizer resolves a message id into text for a language.
type Localizer interface {
	Localize(lang, messageID string) string
}

// lastResortReply is used when the catalog has no text for the message id.
const lastResortReply = "Procesando tu mensaje..."

func fallbackResponse(catalog Localizer, lang, message string) string {
	id := firstMatch(fallbackRules, message, msgFallbackProcessing)
	if catalog == nil {
		return lastResortReply
	}
	if text := catalog.Localize(lang, id); text != "" {
		return text
	}
	return lastResortReply
}
