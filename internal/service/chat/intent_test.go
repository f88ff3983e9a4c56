package chat

import "testing"

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Hola, buenas tardes", IntentGreeting},
		{"¿Cuánto cuesta el plan?", IntentPricing},
		{"Quiero hablar con alguien", IntentContactRequest},
		{"Necesito crear una cuenta", IntentRegistration},
		{"Tengo un problema con el pago", IntentSupport},
		{"¿Qué hacen exactamente?", IntentProductInfo},
		{"lorem ipsum", IntentGeneralInquiry},
		// first matching rule wins
		{"hola, ¿cuál es el precio?", IntentGreeting},
		{"PRECIO", IntentPricing},
	}

	for _, tt := range tests {
		if got := ClassifyIntent(tt.message); got != tt.want {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

type mapLocalizer map[string]string

func (m mapLocalizer) Localize(lang, id string) string {
	return m[id]
}

func TestFallbackResponseRules(t *testing.T) {
	catalog := mapLocalizer{
		msgFallbackGreeting:   "greeting",
		msgFallbackPricing:    "pricing",
		msgFallbackContact:    "contact",
		msgFallbackProcessing: "processing",
	}

	tests := []struct {
		message string
		want    string
	}{
		{"Buenos días", "greeting"},
		{"el costo mensual", "pricing"},
		{"contacto por favor", "contact"},
		// "cuánto" classifies as pricing but has no canned reply
		{"¿cuánto es?", "processing"},
		{"xyz", "processing"},
	}
	for _, tt := range tests {
		if got := fallbackResponse(catalog, "es", tt.message); got != tt.want {
			t.Errorf("fallbackResponse(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}

	if got := fallbackResponse(nil, "es", "hola"); got != lastResortReply {
		t.Fatalf("expected last resort reply without catalog, got %q", got)
	}
	if got := fallbackResponse(mapLocalizer{}, "es", "hola"); got != lastResortReply {
		t.Fatalf("expected last resort reply for missing text, got %q", got)
	}
}
