package dedup

import (
	"fmt"
	"strings"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

const (
	// LevelProtocol marks an installment whose protocol is already registered for the client.
	LevelProtocol Level = "protocol"
)

// InstallmentCandidate is an installment about to be created.
type InstallmentCandidate struct {
	ClientID          string
	InstallmentNumber int
	DueDate           time.Time
	Protocol          string
}

// InstallmentResult is the outcome of an installment duplication check.
type InstallmentResult struct {
	Level   Level
	Match   *domain.Installment
	Message string
}

// IsDuplicate reports whether any tier matched. Both installment tiers block.
func (r InstallmentResult) IsDuplicate() bool {
	return r.Level != "" && r.Level != LevelNone
}

// CheckInstallment classifies an installment candidate:
//
//  1. exact: same client, same installment number, same due date
//  2. protocol: same client, same protocol ignoring case and surrounding spaces
func CheckInstallment(c InstallmentCandidate, existing []*domain.Installment) InstallmentResult {
	var scoped []*domain.Installment
	for _, i := range existing {
		if i.ClientID == c.ClientID {
			scoped = append(scoped, i)
		}
	}

	due := domain.Date(c.DueDate)
	for _, i := range scoped {
		if i.InstallmentNumber == c.InstallmentNumber && domain.Date(i.DueDate).Equal(due) {
			return InstallmentResult{
				Level:   LevelExact,
				Match:   i,
				Message: fmt.Sprintf("installment %d already exists for this client due %s", i.InstallmentNumber, i.DueDate.Format("02/01/2006")),
			}
		}
	}

	protocol := strings.ToLower(strings.TrimSpace(c.Protocol))
	if protocol != "" {
		for _, i := range scoped {
			if i.Protocol != nil && strings.ToLower(strings.TrimSpace(*i.Protocol)) == protocol {
				return InstallmentResult{
					Level:   LevelProtocol,
					Match:   i,
					Message: fmt.Sprintf("an installment with protocol %q already exists for this client", *i.Protocol),
				}
			}
		}
	}

	return InstallmentResult{Level: LevelNone}
}
