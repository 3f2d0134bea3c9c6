package dedup

import (
	"fmt"

	"github.com/rezkam/fiscal/internal/domain"
)

const (
	// LevelCNPJ blocks: the tax ID is already registered.
	LevelCNPJ Level = "cnpj"

	// LevelName needs confirmation: a client with a similar name exists.
	LevelName Level = "name"
)

// ClientResult is the outcome of a client duplication check.
type ClientResult struct {
	Level   Level
	Match   *domain.Client
	Message string
}

// IsDuplicate reports whether any tier matched.
func (r ClientResult) IsDuplicate() bool {
	return r.Level != "" && r.Level != LevelNone
}

// Blocking reports whether creation must not proceed.
func (r ClientResult) Blocking() bool {
	return r.Level == LevelCNPJ
}

// CheckClient classifies a new client against existing ones: equal CNPJ digits
// block, similar names need confirmation. An empty CNPJ never matches.
func CheckClient(name, cnpj string, existing []*domain.Client) ClientResult {
	digits := DigitsOnly(cnpj)
	if digits != "" {
		for _, c := range existing {
			if DigitsOnly(c.CNPJ) == digits {
				return ClientResult{
					Level:   LevelCNPJ,
					Match:   c,
					Message: fmt.Sprintf("a client with this CNPJ is already registered: %q", c.Name),
				}
			}
		}
	}

	for _, c := range existing {
		if Similar(c.Name, name, MinNameSimilarityLength) {
			return ClientResult{
				Level:   LevelName,
				Match:   c,
				Message: fmt.Sprintf("a client with a similar name exists: %q (CNPJ %s); confirm to create anyway", c.Name, c.CNPJ),
			}
		}
	}

	return ClientResult{Level: LevelNone}
}
