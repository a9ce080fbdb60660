package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arisylafeta/aadf-procurement/internal/dto"
	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
)

// ErrProcurementNotFound signals that the referenced procurement does not exist.
var ErrProcurementNotFound = errors.New("procurement not found")

// ErrInvalidSectionPayload wraps schema violations in section payloads.
var ErrInvalidSectionPayload = errors.New("invalid section payload")

// sectionPayloadSchema constrains intake payloads: field values are scalars
// (strings, numbers, booleans) or, for the team section only, a nested
// members object keyed by role.
const sectionPayloadSchema = `{
	"type": "object",
	"additionalProperties": {
		"anyOf": [
			{"type": "string"},
			{"type": "number"},
			{"type": "boolean"},
			{"type": "null"}
		]
	}
}`

const teamPayloadSchema = `{
	"type": "object",
	"properties": {
		"members": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"additionalProperties": {
					"anyOf": [
						{"type": "string"},
						{"type": "number"},
						{"type": "boolean"},
						{"type": "null"}
					]
				}
			}
		}
	},
	"additionalProperties": {
		"anyOf": [
			{"type": "string"},
			{"type": "number"},
			{"type": "boolean"},
			{"type": "null"}
		]
	}
}`

// SubmissionService handles submission intake and retrieval.
type SubmissionService interface {
	Create(ctx context.Context, req dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id string) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions  repository.SubmissionRepository
	procurements repository.ProcurementRepository
	validate     *validator.Validate
	section      *jsonschema.Schema
	team         *jsonschema.Schema
	logger       zerolog.Logger
}

// NewSubmissionService instantiates the service. Schema compilation happens
// once at construction; the schemas are static.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	procurements repository.ProcurementRepository,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions:  submissions,
		procurements: procurements,
		validate:     validator.New(),
		section:      jsonschema.MustCompileString("section_payload.json", sectionPayloadSchema),
		team:         jsonschema.MustCompileString("team_payload.json", teamPayloadSchema),
		logger:       logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, req dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.validatePayloads(req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.procurements.GetByID(ctx, req.ProcurementID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProcurementNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		ID:             uuid.NewString(),
		ProcurementID:  req.ProcurementID,
		BidderName:     req.BidderName,
		CoreData:       datatypes.JSONMap(req.CoreData),
		ExperienceData: datatypes.JSONMap(req.ExperienceData),
		TeamData:       datatypes.JSONMap(req.TeamData),
		ProposedPrice:  req.ProposedPrice,
		RatingStatus:   models.RatingStatusPending,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("procurement_id", submission.ProcurementID).
		Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) validatePayloads(req dto.SubmissionCreateRequest) error {
	checks := []struct {
		name    string
		schema  *jsonschema.Schema
		payload map[string]interface{}
	}{
		{"core_data", s.section, req.CoreData},
		{"experience_data", s.section, req.ExperienceData},
		{"team_data", s.team, req.TeamData},
	}

	for _, check := range checks {
		if check.payload == nil {
			continue
		}
		if err := check.schema.Validate(map[string]interface{}(check.payload)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSectionPayload, check.name, err)
		}
	}

	return nil
}

func (s *submissionService) List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}
