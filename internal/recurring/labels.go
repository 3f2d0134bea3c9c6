package recurring

import (
	"fmt"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

var monthAbbrevPT = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// ReferenceLabel names the fiscal period a due date refers to, as printed on
// guides and reports: "3º Trim/2025", "2º Sem/2025", "2025" or "out/2025".
func ReferenceLabel(date time.Time, r domain.Recurrence) string {
	switch r {
	case domain.RecurrenceQuarterly:
		quarter := (int(date.Month())-1)/3 + 1
		return fmt.Sprintf("%dº Trim/%d", quarter, date.Year())
	case domain.RecurrenceSemiannual:
		semester := 1
		if date.Month() > time.June {
			semester = 2
		}
		return fmt.Sprintf("%dº Sem/%d", semester, date.Year())
	case domain.RecurrenceAnnual:
		return fmt.Sprintf("%d", date.Year())
	default:
		return fmt.Sprintf("%s/%d", monthAbbrevPT[date.Month()-1], date.Year())
	}
}
