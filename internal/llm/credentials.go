package llm

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
)

// CredentialSource supplies the API credentials an orchestrator may use.
// Implementations must return a fresh slice on every call.
type CredentialSource interface {
	Credentials() []string
}

// StaticCredentials is a fixed credential list, usually collected once from
// the environment at startup.
type StaticCredentials []string

// Credentials returns a copy of the list.
func (s StaticCredentials) Credentials() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// CredentialsFromEnviron collects the primary credential stored under prefix
// and every numbered secondary slot (prefix_1, prefix_2, ...). The primary
// comes first, the rest follow in numeric order. Blank values are skipped and
// repeated values are kept once.
func CredentialsFromEnviron(environ []string, prefix string) []string {
	type slot struct {
		n     int
		value string
	}

	var slots []slot
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if key == prefix {
			slots = append(slots, slot{n: -1, value: value})
			continue
		}

		suffix, found := strings.CutPrefix(key, prefix+"_")
		if !found {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		slots = append(slots, slot{n: n, value: value})
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].n < slots[j].n })

	seen := make(map[string]bool, len(slots))
	creds := make([]string, 0, len(slots))
	for _, s := range slots {
		if seen[s.value] {
			continue
		}
		seen[s.value] = true
		creds = append(creds, s.value)
	}
	return creds
}

// ShuffledCopy returns a uniformly random permutation of seq using
// Fisher-Yates. seq itself is not modified. A nil rng uses the global source.
func ShuffledCopy(seq []string, rng *rand.Rand) []string {
	out := make([]string, len(seq))
	copy(out, seq)

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// MaskCredential keeps only enough of a credential to tell keys apart in logs.
func MaskCredential(cred string) string {
	if len(cred) <= 8 {
		return strings.Repeat("*", len(cred))
	}
	return cred[:4] + "…" + cred[len(cred)-4:]
}
