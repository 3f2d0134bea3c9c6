package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rezkam/fiscal/internal/domain"
)

// PostgreSQL error codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Constraint names from migrations.
const (
	constraintOccurrenceUnique  = "uq_occurrences_client_title_kind_month"
	constraintInstallmentUnique = "uq_installments_client_number_due"
	constraintClientCNPJ        = "uq_clients_cnpj"
)

// mapWriteError translates constraint violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		switch pgErr.ConstraintName {
		case constraintOccurrenceUnique:
			return fmt.Errorf("%w: %w", domain.ErrDuplicateOccurrence, err)
		case constraintInstallmentUnique:
			return fmt.Errorf("%w: %w", domain.ErrDuplicateInstallment, err)
		case constraintClientCNPJ:
			return fmt.Errorf("%w: %w", domain.ErrDuplicateClient, err)
		}
	case foreignKeyViolation:
		if strings.Contains(pgErr.ConstraintName, "client_id") {
			return fmt.Errorf("%w: %w", domain.ErrClientNotFound, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrOccurrenceNotFound, err)
	}
	return err
}

// notFound maps pgx.ErrNoRows to the given domain error.
func notFound(err error, sentinel error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return err
}
