package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arisylafeta/aadf-procurement/internal/dto"
	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
)

// DashboardService produces the ranked bidder overview for one procurement.
type DashboardService interface {
	GetDashboard(ctx context.Context, procurementID string) (dto.ProcurementDashboardResponse, error)
}

type dashboardService struct {
	procurements repository.ProcurementRepository
	submissions  repository.SubmissionRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	threshold    float64
	logger       zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator. cache may be nil when
// Redis is not configured; threshold is the qualification cutoff on the
// composite score.
func NewDashboardService(
	procurements repository.ProcurementRepository,
	submissions repository.SubmissionRepository,
	cache *redis.Client,
	ttl time.Duration,
	threshold float64,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		procurements: procurements,
		submissions:  submissions,
		cache:        cache,
		cacheTTL:     ttl,
		threshold:    threshold,
		logger:       logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, procurementID string) (dto.ProcurementDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:procurement:%s", procurementID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ProcurementDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("procurement_id", procurementID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	procurement, err := s.procurements.GetByID(ctx, procurementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProcurementDashboardResponse{}, ErrProcurementNotFound
		}
		return dto.ProcurementDashboardResponse{}, err
	}

	filter := repository.SubmissionFilter{ProcurementID: &procurementID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.ProcurementDashboardResponse{}, err
	}

	response := s.buildResponse(procurement, submissions)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildResponse(procurement models.Procurement, submissions []models.Submission) dto.ProcurementDashboardResponse {
	entries := make([]dto.DashboardEntry, 0, len(submissions))

	for _, submission := range submissions {
		entry := dto.DashboardEntry{
			SubmissionID: submission.ID,
			BidderName:   submission.BidderName,
			RatingStatus: submission.RatingStatus,
		}

		if len(submission.RatingData) > 0 {
			var rating models.RatingData
			if err := json.Unmarshal(submission.RatingData, &rating); err != nil {
				s.logger.Warn().
					Err(err).
					Str("submission_id", submission.ID).
					Msg("failed to decode stored rating data")
			} else {
				entry.OverallScore = rating.OverallScore
				entry.RatedAt = rating.RatedAt
				entry.ErrorMessage = rating.ErrorMessage
				if rating.Status != "" || submission.IsRated() {
					entry.SectionScores = &dto.SectionScores{
						Core:       rating.Core.OverallScore,
						Experience: rating.Experience.OverallScore,
						Team:       rating.Team.OverallScore,
						Price:      rating.Price.Score,
					}
				}
			}
		}

		entry.Qualified = submission.RatingStatus == models.RatingStatusCompleted &&
			entry.OverallScore >= s.threshold

		entries = append(entries, entry)
	}

	// Ranked best first; ties keep a stable bidder-name order.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].OverallScore != entries[j].OverallScore {
			return entries[i].OverallScore > entries[j].OverallScore
		}
		return entries[i].BidderName < entries[j].BidderName
	})

	return dto.ProcurementDashboardResponse{
		ProcurementID:          procurement.ID,
		Title:                  procurement.Title,
		QualificationThreshold: s.threshold,
		Entries:                entries,
	}
}
