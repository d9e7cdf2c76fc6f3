package llm

import "fmt"

// Provider identifies a generative-model API family.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Candidate lists are ordered by preference: cheapest acceptable model with
// the most generous quota first. They are never shuffled.
var modelCandidates = map[Provider][]string{
	ProviderGemini: {
		"gemini-flash-latest",
		"gemini-2.5-flash",
		"gemini-2.0-flash",
		"gemini-2.5-flash-lite",
	},
	ProviderOpenAI: {
		"gpt-4o-mini",
		"gpt-4.1-mini",
		"gpt-4o",
	},
	ProviderAnthropic: {
		"claude-3-5-haiku-latest",
		"claude-sonnet-4-20250514",
	},
}

// credentialEnvPrefix is the environment variable holding each provider's
// primary credential. Numbered secondary slots append "_<n>".
var credentialEnvPrefix = map[Provider]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if _, ok := modelCandidates[p]; !ok {
		return "", fmt.Errorf("unknown provider %q (must be gemini, openai or anthropic)", s)
	}
	return p, nil
}

// ModelCandidates returns a copy of the provider's model list.
func ModelCandidates(p Provider) []string {
	models := modelCandidates[p]
	out := make([]string, len(models))
	copy(out, models)
	return out
}

// CredentialEnvPrefix returns the environment variable name of the
// provider's primary credential.
func CredentialEnvPrefix(p Provider) string {
	return credentialEnvPrefix[p]
}
