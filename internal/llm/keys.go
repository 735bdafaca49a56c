package llm

import (
	"strings"
	"unicode"
)

type keyFormat struct {
	provider Provider
	prefix   string
	minLen   int
}

// Order matters: "sk-ant-" must be tried before the generic "sk-".
var keyFormats = []keyFormat{
	{ProviderAnthropic, "sk-ant-", 20},
	{ProviderGoogle, "AIza", 30},
	{ProviderOpenAI, "sk-", 20},
	{ProviderOpenAI, "sess-", 20},
	{ProviderOpenAI, "rk-", 20},
}

// DetectProvider checks the local shape of an API key and reports which
// provider issued it. It never contacts the network.
func DetectProvider(key string) (Provider, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", Errorf(KindInvalidCredentialFormat, "empty key")
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return "", Errorf(KindInvalidCredentialFormat, "key contains whitespace")
	}

	for _, f := range keyFormats {
		if !strings.HasPrefix(key, f.prefix) {
			continue
		}
		if len(key) < f.minLen {
			return "", Errorf(KindInvalidCredentialFormat, "%s key shorter than %d characters", f.provider, f.minLen)
		}
		return f.provider, nil
	}
	return "", Errorf(KindInvalidCredentialFormat, "unrecognized key prefix")
}

// EnvVar returns the environment variable conventionally holding p's key.
func EnvVar(p Provider) string {
	switch p {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
