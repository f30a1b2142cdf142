package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/repositories"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/postgres"
	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

const insurancePoliciesTable = "insurance_policies"

var insurancePolicyColumns = []any{
	"id", "document_id", "user_id", "policy_name", "policy_type", "policy_number",
	"plan_year", "effective_date", "expiration_date",
	"deductible_individual", "deductible_family",
	"out_of_pocket_max_individual", "out_of_pocket_max_family",
	"premium_monthly", "premium_annual", "network_type",
	"created_by", "extraction_confidence", "created_at", "updated_at",
}

// InsurancePolicyAdapter implements InsurancePolicyRepository
type InsurancePolicyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewInsurancePolicyAdapter creates a new insurance policy adapter
func NewInsurancePolicyAdapter(client *postgres.Client) repositories.InsurancePolicyRepository {
	return &InsurancePolicyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new policy
func (a *InsurancePolicyAdapter) Create(ctx context.Context, policy *entities.InsurancePolicy) error {
	record := goqu.Record{
		"id":                           policy.ID,
		"document_id":                  policy.DocumentID,
		"user_id":                      nullString(policy.UserID),
		"policy_name":                  policy.PolicyName,
		"policy_type":                  string(policy.PolicyType),
		"policy_number":                policy.PolicyNumber,
		"plan_year":                    policy.PlanYear,
		"effective_date":               policy.EffectiveDate,
		"expiration_date":              policy.ExpirationDate,
		"deductible_individual":        policy.DeductibleIndividual,
		"deductible_family":            policy.DeductibleFamily,
		"out_of_pocket_max_individual": policy.OutOfPocketMaxIndividual,
		"out_of_pocket_max_family":     policy.OutOfPocketMaxFamily,
		"premium_monthly":              policy.PremiumMonthly,
		"premium_annual":               policy.PremiumAnnual,
		"network_type":                 policy.NetworkType,
		"created_by":                   string(policy.CreatedBy),
		"extraction_confidence":        policy.ExtractionConfidence,
		"created_at":                   policy.CreatedAt,
		"updated_at":                   policy.UpdatedAt,
	}

	query, args, err := a.db.Insert(insurancePoliciesTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create insurance policy", err)
	}
	return nil
}

// GetByID retrieves a policy by ID
func (a *InsurancePolicyAdapter) GetByID(ctx context.Context, id string) (*entities.InsurancePolicy, error) {
	query, args, err := a.db.Select(insurancePolicyColumns...).
		From(insurancePoliciesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	policy, err := scanInsurancePolicy(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("insurance policy with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get insurance policy", err)
	}
	return policy, nil
}

// GetByDocumentID retrieves the policies created from a document, oldest first
func (a *InsurancePolicyAdapter) GetByDocumentID(ctx context.Context, documentID string) ([]*entities.InsurancePolicy, error) {
	query, args, err := a.db.Select(insurancePolicyColumns...).
		From(insurancePoliciesTable).
		Where(goqu.Ex{"document_id": documentID}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list insurance policies", err)
	}
	defer rows.Close()

	policies := []*entities.InsurancePolicy{}
	for rows.Next() {
		policy, err := scanInsurancePolicy(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan insurance policy", err)
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate insurance policies", err)
	}
	return policies, nil
}

func scanInsurancePolicy(row rowScanner) (*entities.InsurancePolicy, error) {
	p := &entities.InsurancePolicy{}
	var (
		userID                sql.NullString
		policyType, createdBy string
		planYear              sql.NullInt64
	)

	err := row.Scan(
		&p.ID,
		&p.DocumentID,
		&userID,
		&p.PolicyName,
		&policyType,
		&p.PolicyNumber,
		&planYear,
		&p.EffectiveDate,
		&p.ExpirationDate,
		&p.DeductibleIndividual,
		&p.DeductibleFamily,
		&p.OutOfPocketMaxIndividual,
		&p.OutOfPocketMaxFamily,
		&p.PremiumMonthly,
		&p.PremiumAnnual,
		&p.NetworkType,
		&createdBy,
		&p.ExtractionConfidence,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.UserID = userID.String
	p.PolicyType = entities.PolicyType(policyType)
	p.CreatedBy = entities.PolicyCreator(createdBy)
	if planYear.Valid {
		year := int(planYear.Int64)
		p.PlanYear = &year
	}
	return p, nil
}
