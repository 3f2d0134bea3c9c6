// Package compliance holds the behavioral test suite every persistence backend must pass.
package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/fiscal/internal/application/client"
	"github.com/rezkam/fiscal/internal/application/installment"
	"github.com/rezkam/fiscal/internal/application/scheduling"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/ptr"
)

// Store is the full method set a backend exposes.
type Store interface {
	scheduling.Repository
	installment.Repository
	client.Repository

	FindHistory(ctx context.Context, entityID string) ([]*domain.HistoryEntry, error)
}

// RunStoreComplianceTest runs the standard suite against a Store implementation.
// setup returns a fresh, empty store and a teardown func.
func RunStoreComplianceTest(t *testing.T, setup func() (Store, func())) {
	t.Run("CreateAndFindClient", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := newClient("Padaria Central", "12345678000190")
		created, err := store.CreateClient(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, c.ID, created.ID)
		assert.Equal(t, "Padaria Central", created.Name)
		assert.Equal(t, domain.ActivityCommerce, created.BusinessActivity)

		fetched, err := store.FindClientByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "12345678000190", fetched.CNPJ)
		assert.Equal(t, "simples", fetched.TaxRegime)
		assert.WithinDuration(t, c.CreatedAt, fetched.CreatedAt, time.Millisecond)
	})

	t.Run("ClientErrors", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		_, err := store.CreateClient(ctx, newClient("A", "11111111000111"))
		require.NoError(t, err)

		_, err = store.CreateClient(ctx, newClient("B", "11111111000111"))
		assert.ErrorIs(t, err, domain.ErrDuplicateClient)

		// An empty CNPJ is not unique.
		_, err = store.CreateClient(ctx, newClient("C", ""))
		require.NoError(t, err)
		_, err = store.CreateClient(ctx, newClient("D", ""))
		require.NoError(t, err)

		_, err = store.FindClientByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrClientNotFound)

		_, err = store.FindClientByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrInvalidID)

		clients, err := store.FindClients(ctx)
		require.NoError(t, err)
		require.Len(t, clients, 4)
		assert.Equal(t, "A", clients[0].Name)
	})

	t.Run("CreateAndFindOccurrence", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		parent := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.March, 20))
		parent.Status = domain.StatusPaid
		parent.PaidAt = ptr.To(time.Date(2025, time.March, 18, 14, 0, 0, 0, time.UTC))
		_, err := store.CreateOccurrence(ctx, parent)
		require.NoError(t, err)

		child := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.April, 22))
		child.OriginalDueDate = ptr.To(date(2025, time.April, 20))
		child.ParentID = ptr.To(parent.ID)
		child.AutoCreated = true
		child.Amount = decimal.RequireFromString("1234.56")
		child.WeekendPolicy = domain.WeekendPostpone

		created, err := store.CreateOccurrence(ctx, child)
		require.NoError(t, err)
		assert.Equal(t, child.ID, created.ID)

		fetched, err := store.FindOccurrenceByID(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.KindTax, fetched.Kind)
		assert.Equal(t, date(2025, time.April, 22), fetched.DueDate)
		require.NotNil(t, fetched.OriginalDueDate)
		assert.Equal(t, date(2025, time.April, 20), *fetched.OriginalDueDate)
		require.NotNil(t, fetched.ParentID)
		assert.Equal(t, parent.ID, *fetched.ParentID)
		assert.True(t, fetched.AutoCreated)
		assert.True(t, decimal.RequireFromString("1234.56").Equal(fetched.Amount))
		assert.Equal(t, domain.RecurrenceMonthly, fetched.Recurrence)
		assert.Equal(t, domain.WeekendPostpone, fetched.WeekendPolicy)
		assert.Nil(t, fetched.PaidAt)

		fetchedParent, err := store.FindOccurrenceByID(ctx, parent.ID)
		require.NoError(t, err)
		require.NotNil(t, fetchedParent.PaidAt)
		assert.True(t, parent.PaidAt.Equal(*fetchedParent.PaidAt))
		assert.Nil(t, fetchedParent.ParentID)
	})

	t.Run("OccurrenceUniquePerMonth", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		_, err := store.CreateOccurrence(ctx, newOccurrence(c.ID, "DCTF Web", domain.KindObligation, date(2025, time.May, 15)))
		require.NoError(t, err)

		// Same normalized title in the same month.
		_, err = store.CreateOccurrence(ctx, newOccurrence(c.ID, "  dctf   WEB ", domain.KindObligation, date(2025, time.May, 30)))
		assert.ErrorIs(t, err, domain.ErrDuplicateOccurrence)

		// Other kind, other month and other client are all distinct keys.
		_, err = store.CreateOccurrence(ctx, newOccurrence(c.ID, "DCTF Web", domain.KindTax, date(2025, time.May, 15)))
		require.NoError(t, err)
		_, err = store.CreateOccurrence(ctx, newOccurrence(c.ID, "DCTF Web", domain.KindObligation, date(2025, time.June, 15)))
		require.NoError(t, err)
		other := mustClient(t, store)
		_, err = store.CreateOccurrence(ctx, newOccurrence(other.ID, "DCTF Web", domain.KindObligation, date(2025, time.May, 15)))
		require.NoError(t, err)
	})

	t.Run("OccurrenceMonthKeyIgnoresAdjustment", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		november := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.December, 1))
		november.OriginalDueDate = ptr.To(date(2025, time.November, 30))
		_, err := store.CreateOccurrence(ctx, november)
		require.NoError(t, err)

		december := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.December, 30))
		_, err = store.CreateOccurrence(ctx, december)
		require.NoError(t, err)

		// A second November entry still collides with the shifted one.
		_, err = store.CreateOccurrence(ctx, newOccurrence(c.ID, "das", domain.KindTax, date(2025, time.November, 20)))
		assert.ErrorIs(t, err, domain.ErrDuplicateOccurrence)

		month := date(2025, time.November, 1)
		inNovember, err := store.FindOccurrences(ctx, domain.OccurrenceFilter{ClientID: c.ID, PeriodMonth: &month})
		require.NoError(t, err)
		assert.Equal(t, []string{november.ID}, ids(inNovember))

		month = date(2025, time.December, 1)
		inDecember, err := store.FindOccurrences(ctx, domain.OccurrenceFilter{ClientID: c.ID, PeriodMonth: &month})
		require.NoError(t, err)
		assert.Equal(t, []string{december.ID}, ids(inDecember))
	})

	t.Run("OccurrenceUnknownClient", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		_, err := store.CreateOccurrence(ctx, newOccurrence(uuid.NewString(), "DAS", domain.KindTax, date(2025, time.May, 20)))
		assert.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("FindOccurrencesFilters", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		other := mustClient(t, store)

		paidTax := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.March, 20))
		paidTax.Status = domain.StatusPaid
		doneObligation := newOccurrence(c.ID, "DEFIS", domain.KindObligation, date(2025, time.March, 31))
		doneObligation.Status = domain.StatusCompleted
		oneOff := newOccurrence(c.ID, "Alvara", domain.KindObligation, date(2025, time.March, 10))
		oneOff.Status = domain.StatusCompleted
		oneOff.Recurrence = domain.RecurrenceNone
		// A tax marked completed is not fulfilled.
		wrongStatus := newOccurrence(c.ID, "ISS", domain.KindTax, date(2025, time.March, 10))
		wrongStatus.Status = domain.StatusCompleted
		april := newOccurrence(c.ID, "FGTS", domain.KindTax, date(2025, time.April, 7))
		otherClient := newOccurrence(other.ID, "DAS", domain.KindTax, date(2025, time.March, 20))

		for _, occ := range []*domain.Occurrence{paidTax, doneObligation, oneOff, wrongStatus, april, otherClient} {
			_, err := store.CreateOccurrence(ctx, occ)
			require.NoError(t, err)
		}

		sources, err := store.FindOccurrences(ctx, domain.OccurrenceFilter{SourcesOnly: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{paidTax.ID, doneObligation.ID}, ids(sources))

		from, to := domain.MonthRange(date(2025, time.March, 1))
		march, err := store.FindOccurrences(ctx, domain.OccurrenceFilter{ClientID: c.ID, DueFrom: &from, DueTo: &to})
		require.NoError(t, err)
		require.Len(t, march, 4)
		assert.ElementsMatch(t, []string{oneOff.ID, wrongStatus.ID}, ids(march[:2]))
		assert.Equal(t, []string{paidTax.ID, doneObligation.ID}, ids(march[2:]), "ordered by due date")

		taxes, err := store.FindOccurrences(ctx, domain.OccurrenceFilter{ClientID: c.ID, Kind: domain.KindTax})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{paidTax.ID, wrongStatus.ID, april.ID}, ids(taxes))

		pending, err := store.FindOccurrences(ctx, domain.OccurrenceFilter{Statuses: []domain.Status{domain.StatusPending}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{april.ID, otherClient.ID}, ids(pending))
	})

	t.Run("UpdateOccurrenceStatus", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		obligation := newOccurrence(c.ID, "DEFIS", domain.KindObligation, date(2025, time.March, 31))
		tax := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.March, 20))
		for _, occ := range []*domain.Occurrence{obligation, tax} {
			_, err := store.CreateOccurrence(ctx, occ)
			require.NoError(t, err)
		}

		at := time.Date(2025, time.March, 19, 10, 30, 0, 0, time.UTC)

		updated, err := store.UpdateOccurrenceStatus(ctx, obligation.ID, domain.StatusCompleted, &at)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		assert.True(t, at.Equal(*updated.CompletedAt))
		assert.Nil(t, updated.PaidAt)

		updated, err = store.UpdateOccurrenceStatus(ctx, tax.ID, domain.StatusPaid, &at)
		require.NoError(t, err)
		require.NotNil(t, updated.PaidAt)
		assert.Nil(t, updated.CompletedAt)

		// Reopening clears the timestamp.
		updated, err = store.UpdateOccurrenceStatus(ctx, tax.ID, domain.StatusPending, nil)
		require.NoError(t, err)
		assert.Nil(t, updated.PaidAt)

		_, err = store.UpdateOccurrenceStatus(ctx, uuid.NewString(), domain.StatusPaid, &at)
		assert.ErrorIs(t, err, domain.ErrOccurrenceNotFound)
	})

	t.Run("History", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		source := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.March, 20))
		child := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.April, 22))
		for _, occ := range []*domain.Occurrence{source, child} {
			_, err := store.CreateOccurrence(ctx, occ)
			require.NoError(t, err)
		}

		entry := &domain.HistoryEntry{
			ID:              uuid.NewString(),
			EntityType:      domain.EntityTax,
			EntityID:        child.ID,
			OriginalID:      source.ID,
			CreatedBySystem: true,
			CreationDate:    date(2025, time.April, 1),
		}
		require.NoError(t, store.CreateHistoryEntry(ctx, entry))

		entries, err := store.FindHistory(ctx, child.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, source.ID, entries[0].OriginalID)
		assert.Equal(t, domain.EntityTax, entries[0].EntityType)
		assert.True(t, entries[0].CreatedBySystem)
		assert.Equal(t, date(2025, time.April, 1), entries[0].CreationDate)

		none, err := store.FindHistory(ctx, source.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("AtomicSchedulingRollsBack", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		occ := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.April, 22))
		boom := errors.New("history write failed")

		err := store.AtomicScheduling(ctx, func(tx scheduling.Repository) error {
			if _, err := tx.CreateOccurrence(ctx, occ); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.FindOccurrenceByID(ctx, occ.ID)
		assert.ErrorIs(t, err, domain.ErrOccurrenceNotFound)
	})

	t.Run("AtomicSchedulingCommits", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		source := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.March, 20))
		_, err := store.CreateOccurrence(ctx, source)
		require.NoError(t, err)

		child := newOccurrence(c.ID, "DAS", domain.KindTax, date(2025, time.April, 22))
		err = store.AtomicScheduling(ctx, func(tx scheduling.Repository) error {
			if _, err := tx.CreateOccurrence(ctx, child); err != nil {
				return err
			}
			return tx.CreateHistoryEntry(ctx, &domain.HistoryEntry{
				ID:              uuid.NewString(),
				EntityType:      domain.EntityTax,
				EntityID:        child.ID,
				OriginalID:      source.ID,
				CreatedBySystem: true,
				CreationDate:    date(2025, time.April, 1),
			})
		})
		require.NoError(t, err)

		_, err = store.FindOccurrenceByID(ctx, child.ID)
		require.NoError(t, err)
		entries, err := store.FindHistory(ctx, child.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Installments", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		due := []time.Time{date(2025, time.March, 5), date(2025, time.April, 1), date(2025, time.May, 2)}
		for i := len(due) - 1; i >= 0; i-- {
			inst := newInstallment(c.ID, i+1, len(due), due[i])
			inst.Protocol = ptr.To("PARC-001")
			_, err := store.CreateInstallment(ctx, inst)
			require.NoError(t, err)
		}

		list, err := store.FindInstallments(ctx, domain.InstallmentFilter{ClientID: c.ID})
		require.NoError(t, err)
		require.Len(t, list, 3)
		for i, inst := range list {
			assert.Equal(t, i+1, inst.InstallmentNumber, "ordered by number")
			assert.Equal(t, 3, inst.TotalInstallments)
			assert.Equal(t, due[i], inst.DueDate)
			require.NotNil(t, inst.Protocol)
			assert.Equal(t, "PARC-001", *inst.Protocol)
			assert.True(t, decimal.RequireFromString("350.75").Equal(inst.Amount))
		}

		_, err = store.CreateInstallment(ctx, newInstallment(c.ID, 2, 3, due[1]))
		assert.ErrorIs(t, err, domain.ErrDuplicateInstallment)

		paidAt := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
		updated, err := store.UpdateInstallmentStatus(ctx, list[1].ID, domain.InstallmentPaid, &paidAt)
		require.NoError(t, err)
		assert.Equal(t, domain.InstallmentPaid, updated.Status)
		require.NotNil(t, updated.PaidAt)
		assert.True(t, paidAt.Equal(*updated.PaidAt))

		_, err = store.UpdateInstallmentStatus(ctx, uuid.NewString(), domain.InstallmentPaid, nil)
		assert.ErrorIs(t, err, domain.ErrInstallmentNotFound)

		_, err = store.FindInstallmentByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrInstallmentNotFound)

		empty, err := store.FindInstallments(ctx, domain.InstallmentFilter{ClientID: mustClient(t, store).ID})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("InstallmentLinkedToObligation", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		c := mustClient(t, store)
		obligation := newOccurrence(c.ID, "Parcelamento Simples", domain.KindObligation, date(2025, time.March, 31))
		_, err := store.CreateOccurrence(ctx, obligation)
		require.NoError(t, err)

		inst := newInstallment(c.ID, 1, 1, date(2025, time.March, 31))
		inst.ObligationID = ptr.To(obligation.ID)
		_, err = store.CreateInstallment(ctx, inst)
		require.NoError(t, err)

		linked, err := store.FindInstallments(ctx, domain.InstallmentFilter{ObligationID: obligation.ID})
		require.NoError(t, err)
		require.Len(t, linked, 1)
		require.NotNil(t, linked[0].ObligationID)
		assert.Equal(t, obligation.ID, *linked[0].ObligationID)
	})

	t.Run("Templates", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		simples := &domain.Template{
			ID:                 uuid.NewString(),
			Name:               "Simples Nacional",
			TaxRegimes:         []string{"simples", "mei"},
			BusinessActivities: []domain.BusinessActivity{domain.ActivityCommerce},
			Items: []domain.TemplateItem{
				{Title: "DAS", Kind: domain.KindTax, Recurrence: domain.RecurrenceMonthly, DayOfMonth: 20},
				{Title: "DEFIS", Kind: domain.KindObligation, Recurrence: domain.RecurrenceAnnual, DayOfMonth: 31, WeekendRule: domain.WeekendAdvance},
			},
			CreatedAt: time.Now().UTC(),
		}
		presumido := &domain.Template{
			ID:         uuid.NewString(),
			Name:       "Lucro Presumido",
			TaxRegimes: []string{"presumido"},
			Kind:       domain.KindTax,
			Recurrence: domain.RecurrenceQuarterly,
			DayOfMonth: 30,
			CreatedAt:  time.Now().UTC(),
		}
		for _, tmpl := range []*domain.Template{simples, presumido} {
			_, err := store.CreateTemplate(ctx, tmpl)
			require.NoError(t, err)
		}

		all, err := store.FindTemplates(ctx, domain.TemplateFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Lucro Presumido", all[0].Name)

		matched, err := store.FindTemplates(ctx, domain.TemplateFilter{TaxRegime: "mei"})
		require.NoError(t, err)
		require.Len(t, matched, 1)
		got := matched[0]
		assert.Equal(t, simples.ID, got.ID)
		assert.Equal(t, []string{"simples", "mei"}, got.TaxRegimes)
		assert.Equal(t, []domain.BusinessActivity{domain.ActivityCommerce}, got.BusinessActivities)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "DEFIS", got.Items[1].Title)
		assert.Equal(t, domain.WeekendAdvance, got.Items[1].WeekendRule)
		assert.Equal(t, 31, got.Items[1].DayOfMonth)

		legacy, err := store.FindTemplates(ctx, domain.TemplateFilter{TaxRegime: "presumido"})
		require.NoError(t, err)
		require.Len(t, legacy, 1)
		assert.Empty(t, legacy[0].Items)
		assert.Equal(t, domain.KindTax, legacy[0].Kind)
		assert.Equal(t, domain.RecurrenceQuarterly, legacy[0].Recurrence)
		assert.Equal(t, 30, legacy[0].DayOfMonth)

		none, err := store.FindTemplates(ctx, domain.TemplateFilter{TaxRegime: "real"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func date(year int, month time.Month, day int) time.Time {
	return domain.NewDate(year, month, day)
}

func newClient(name, cnpj string) *domain.Client {
	return &domain.Client{
		ID:               uuid.NewString(),
		Name:             name,
		CNPJ:             cnpj,
		TaxRegime:        "simples",
		BusinessActivity: domain.ActivityCommerce,
		CreatedAt:        time.Now().UTC(),
	}
}

func mustClient(t *testing.T, store Store) *domain.Client {
	t.Helper()
	c, err := store.CreateClient(context.Background(), newClient("Client "+uuid.NewString()[:8], ""))
	require.NoError(t, err)
	return c
}

func newOccurrence(clientID, title string, kind domain.Kind, due time.Time) *domain.Occurrence {
	now := time.Now().UTC()
	return &domain.Occurrence{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		Kind:       kind,
		Title:      title,
		Amount:     decimal.Zero,
		DueDate:    due,
		Status:     domain.StatusPending,
		Recurrence: domain.RecurrenceMonthly,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func newInstallment(clientID string, number, total int, due time.Time) *domain.Installment {
	return &domain.Installment{
		ID:                uuid.NewString(),
		ClientID:          clientID,
		InstallmentNumber: number,
		TotalInstallments: total,
		DueDate:           due,
		Status:            domain.InstallmentPending,
		Amount:            decimal.RequireFromString("350.75"),
		CreatedAt:         time.Now().UTC(),
	}
}

func ids(occurrences []*domain.Occurrence) []string {
	out := make([]string, len(occurrences))
	for i, o := range occurrences {
		out[i] = o.ID
	}
	return out
}
