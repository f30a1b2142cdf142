package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/repositories"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/postgres"
	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

const redFlagsTable = "red_flags"

// RedFlagAdapter implements RedFlagRepository
type RedFlagAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRedFlagAdapter creates a new red flag adapter
func NewRedFlagAdapter(client *postgres.Client) repositories.RedFlagRepository {
	return &RedFlagAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CreateBatch stores all flags in one statement
func (a *RedFlagAdapter) CreateBatch(ctx context.Context, flags []*entities.RedFlag) error {
	if len(flags) == 0 {
		return nil
	}

	rows := make([]any, 0, len(flags))
	for _, f := range flags {
		rows = append(rows, goqu.Record{
			"id":               f.ID,
			"policy_id":        f.PolicyID,
			"rule_id":          f.RuleID,
			"flag_type":        string(f.FlagType),
			"severity":         string(f.Severity),
			"title":            f.Title,
			"description":      f.Description,
			"source_text":      f.SourceText,
			"recommendation":   f.Recommendation,
			"confidence_score": f.ConfidenceScore,
			"detected_by":      f.DetectedBy,
			"span_start":       f.SpanStart,
			"span_end":         f.SpanEnd,
			"created_at":       f.CreatedAt,
		})
	}

	query, args, err := a.db.Insert(redFlagsTable).Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create red flags", err)
	}
	return nil
}

// ListByPolicy retrieves a policy's flags ordered by span
func (a *RedFlagAdapter) ListByPolicy(ctx context.Context, policyID string) ([]*entities.RedFlag, error) {
	query, args, err := a.db.Select(
		"id", "policy_id", "rule_id", "flag_type", "severity", "title", "description",
		"source_text", "recommendation", "confidence_score", "detected_by",
		"span_start", "span_end", "created_at",
	).From(redFlagsTable).
		Where(goqu.Ex{"policy_id": policyID}).
		Order(goqu.I("span_start").Asc(), goqu.I("rule_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list red flags", err)
	}
	defer rows.Close()

	flags := []*entities.RedFlag{}
	for rows.Next() {
		f := &entities.RedFlag{}
		var flagType, severity string

		err := rows.Scan(
			&f.ID,
			&f.PolicyID,
			&f.RuleID,
			&flagType,
			&severity,
			&f.Title,
			&f.Description,
			&f.SourceText,
			&f.Recommendation,
			&f.ConfidenceScore,
			&f.DetectedBy,
			&f.SpanStart,
			&f.SpanEnd,
			&f.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan red flag", err)
		}

		f.FlagType = entities.RedFlagType(flagType)
		f.Severity = entities.Severity(severity)
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate red flags", err)
	}
	return flags, nil
}
