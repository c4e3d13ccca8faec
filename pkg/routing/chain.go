package routing

import (
	"fmt"
	"strings"
)

// Target is one upstream option: a provider name and the model to request
// from it.
type Target struct {
	// Provider is the provider name as configured.
	Provider string

	// Model is the model identifier to send to that provider.
	Model string
}

// String returns the wire form "provider,model".
func (t Target) String() string {
	return t.Provider + "," + t.Model
}

// TargetChain is a non-empty ordered sequence of targets, tried left to
// right until one succeeds.
type TargetChain []Target

// String returns the wire form, segments joined by "|".
func (c TargetChain) String() string {
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = t.String()
	}
	return strings.Join(parts, "|")
}

// ParseChain parses a chain expression: "provider,model" segments joined by
// "|". Whitespace around providers and models is trimmed. An empty
// expression, an empty provider, or an empty model is an error.
func ParseChain(expr string) (TargetChain, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty chain expression")
	}

	segments := strings.Split(expr, "|")
	chain := make(TargetChain, 0, len(segments))
	for _, segment := range segments {
		provider, model, ok := strings.Cut(segment, ",")
		provider = strings.TrimSpace(provider)
		model = strings.TrimSpace(model)
		if !ok || provider == "" || model == "" {
			return nil, fmt.Errorf("malformed chain segment %q, want \"provider,model\"", segment)
		}
		chain = append(chain, Target{Provider: provider, Model: model})
	}
	return chain, nil
}

// MustParseChain is ParseChain for expressions known to be valid, such as
// values that already passed configuration validation. It panics on error.
func MustParseChain(expr string) TargetChain {
	chain, err := ParseChain(expr)
	if err != nil {
		panic(err)
	}
	return chain
}
