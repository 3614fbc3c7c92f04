package plans

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sheisgracious/mindwell/internal/plantypes"
	"github.com/sheisgracious/mindwell/internal/providers"
)

var (
	ErrNotFound             = errors.New("therapy plan not found")
	ErrNotParty             = errors.New("not a party to this plan")
	ErrProviderNotFound     = errors.New("provider not found")
	ErrPlanTypeInactive     = errors.New("plan type is not active")
	ErrPlanTypeNotSupported = errors.New("provider does not offer this plan type")
)

// PlanTypeSource is the slice of the plan-type catalog the plan service
// needs: lookup by id.
type PlanTypeSource interface {
	Get(ctx context.Context, id string) (plantypes.PlanType, error)
}

// ProviderSource resolves provider profiles by id.
type ProviderSource interface {
	Get(ctx context.Context, id string) (providers.Provider, error)
}

type Service struct {
	repo      Repository
	planTypes PlanTypeSource
	providers ProviderSource
}

func NewService(repo Repository, planTypes PlanTypeSource, prov ProviderSource) *Service {
	return &Service{repo: repo, planTypes: planTypes, providers: prov}
}

// Create opens a plan for the given patient. The provider must exist and
// must be listed on an active plan type; the plan's cost is a snapshot of
// the plan type's base cost.
func (s *Service) Create(ctx context.Context, patientID string, req CreateRequest) (*TherapyPlan, error) {
	if _, err := s.providers.Get(ctx, req.ProviderID); err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}

	pt, err := s.planTypes.Get(ctx, req.PlanTypeID)
	if err != nil {
		if errors.Is(err, plantypes.ErrNotFound) {
			return nil, plantypes.ErrNotFound
		}
		return nil, err
	}
	if !pt.IsActive {
		return nil, ErrPlanTypeInactive
	}
	if !pt.Supports(req.ProviderID) {
		return nil, ErrPlanTypeNotSupported
	}

	plan := &TherapyPlan{
		PatientID:  patientID,
		ProviderID: req.ProviderID,
		PlanTypeID: pt.ID,
		Status:     StatusActive,
		StartDate:  req.StartDate,
		Notes:      req.Notes,
		Cost:       pt.BaseCost,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, id string) (*TherapyPlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetForParty returns the plan only when the caller is its provider or its
// patient. Either id may be empty when the caller lacks that role.
func (s *Service) GetForParty(ctx context.Context, id, providerID, patientID string) (*TherapyPlan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.IsParty(providerID, patientID) {
		return nil, ErrNotParty
	}
	return plan, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]TherapyPlan, error) {
	return s.repo.ListByPatient(ctx, patientID, filter)
}

func (s *Service) ListByProvider(ctx context.Context, providerID string, filter ListFilter) ([]TherapyPlan, error) {
	return s.repo.ListByProvider(ctx, providerID, filter)
}

// UpdateStatus moves a plan between statuses. Only a party to the plan may
// change it.
func (s *Service) UpdateStatus(ctx context.Context, id, providerID, patientID, status string) (*TherapyPlan, error) {
	plan, err := s.GetForParty(ctx, id, providerID, patientID)
	if err != nil {
		return nil, err
	}
	if plan.Status == status {
		return plan, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	plan.Status = status
	return plan, nil
}
