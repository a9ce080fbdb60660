package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/observability"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
)

var (
	// ErrInvalidSubmissionID signals a blank or malformed submission id.
	ErrInvalidSubmissionID = errors.New("invalid submission ID")
	// ErrSubmissionNotFound signals that no submission matched the id.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrMissingProcurementID signals a submission without a procurement link.
	ErrMissingProcurementID = errors.New("submission is missing procurement_id")
	// ErrRatingInProgress signals a concurrent rating run for the same id.
	ErrRatingInProgress = errors.New("rating already in progress for this submission")
)

// EventPublisher is the subset of the NATS connection the rating service
// needs. A nil publisher disables event emission.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// RatingCompletedSubject carries rating completion events for downstream
// consumers (notifications, cache invalidation).
const RatingCompletedSubject = "procura.rating.completed"

// RatingCompletedEvent is the payload published after each rating run that
// produced a persisted RatingData record.
type RatingCompletedEvent struct {
	SubmissionID  string  `json:"submissionId"`
	ProcurementID string  `json:"procurementId"`
	Status        string  `json:"status"`
	OverallScore  float64 `json:"overallScore"`
}

// RatingService orchestrates the full evaluation of a single submission.
type RatingService interface {
	RateSubmission(ctx context.Context, submissionID string) (models.RatingData, error)
}

type ratingService struct {
	submissions repository.SubmissionRepository
	core        SectionRater
	experience  SectionRater
	team        SectionRater
	price       PriceRater
	publisher   EventPublisher
	logger      zerolog.Logger
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewRatingService wires the four section raters behind the orchestrator.
// publisher may be nil when no event bus is configured.
func NewRatingService(
	submissions repository.SubmissionRepository,
	core, experience, team SectionRater,
	price PriceRater,
	publisher EventPublisher,
	logger zerolog.Logger,
) RatingService {
	return &ratingService{
		submissions: submissions,
		core:        core,
		experience:  experience,
		team:        team,
		price:       price,
		publisher:   publisher,
		logger:      logger.With().Str("component", "rating_service").Logger(),
		now:         time.Now,
		inFlight:    make(map[string]struct{}),
	}
}

// RateSubmission runs all four raters concurrently, folds their results into
// one RatingData record and persists it together with the final status. A
// failing rater degrades its own section; only fetch and save failures abort
// the run as a whole.
func (s *ratingService) RateSubmission(ctx context.Context, submissionID string) (models.RatingData, error) {
	if strings.TrimSpace(submissionID) == "" {
		return models.RatingData{}, ErrInvalidSubmissionID
	}

	if !s.acquire(submissionID) {
		return models.RatingData{}, ErrRatingInProgress
	}
	defer s.release(submissionID)

	started := s.now()
	logger := s.logger.With().Str("submission_id", submissionID).Logger()
	logger.Info().Msg("starting submission rating")

	submission, err := s.submissions.GetForRating(ctx, submissionID)
	if err != nil {
		message := "Failed to fetch submission data: " + err.Error()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message = "Failed to fetch submission data: submission not found"
			err = ErrSubmissionNotFound
		}
		s.markError(ctx, submissionID, message, logger)
		observability.RatingRuns().WithLabelValues(models.RatingStatusError).Inc()
		return models.RatingData{}, err
	}

	if submission.ProcurementID == "" {
		s.markError(ctx, submissionID, "Submission is missing procurement_id", logger)
		observability.RatingRuns().WithLabelValues(models.RatingStatusError).Inc()
		return models.RatingData{}, ErrMissingProcurementID
	}

	// Best effort: a failed transition must not block the run itself.
	if err := s.submissions.UpdateRatingStatus(ctx, submissionID, models.RatingStatusProcessing, ""); err != nil {
		logger.Warn().Err(err).Msg("failed to mark submission as processing")
	}

	data := s.runRaters(ctx, submission, logger)
	data.RatingVersion = models.RatingVersion
	data.RatedAt = s.now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(data)
	if err == nil {
		err = s.submissions.UpdateRating(ctx, submissionID, datatypes.JSON(payload), data.Status)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to persist rating results")
		s.markError(ctx, submissionID, "Failed to save rating results: "+err.Error(), logger)
		data.Status = models.RatingStatusError
		if data.ErrorMessage == "" {
			data.ErrorMessage = "Failed to save rating results: " + err.Error()
		} else {
			data.ErrorMessage += "; Failed to save results: " + err.Error()
		}
	}

	observability.RatingRuns().WithLabelValues(data.Status).Inc()
	observability.RatingDuration().Observe(s.now().Sub(started).Seconds())

	s.publishCompleted(submissionID, submission.ProcurementID, data, logger)

	logger.Info().
		Str("status", data.Status).
		Float64("overall_score", data.OverallScore).
		Dur("duration", s.now().Sub(started)).
		Msg("submission rating finished")

	return data, nil
}

// runRaters settles all four section raters concurrently. Each goroutine is
// shielded by recover so a panicking rater degrades into a failed section
// instead of killing the process.
func (s *ratingService) runRaters(ctx context.Context, submission models.Submission, logger zerolog.Logger) models.RatingData {
	var (
		wg       sync.WaitGroup
		coreRes  models.SectionRating
		expRes   models.SectionRating
		teamRes  models.SectionRating
		priceRes models.PriceRating
		coreErr  error
		expErr   error
		teamErr  error
		priceErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		coreRes, coreErr = s.runSection(ctx, "core", s.core, submission, logger)
	}()
	go func() {
		defer wg.Done()
		expRes, expErr = s.runSection(ctx, "experience", s.experience, submission, logger)
	}()
	go func() {
		defer wg.Done()
		teamRes, teamErr = s.runSection(ctx, "team", s.team, submission, logger)
	}()
	go func() {
		defer wg.Done()
		priceRes, priceErr = s.runPrice(ctx, submission, logger)
	}()
	wg.Wait()

	var failures []string
	if coreErr != nil {
		failures = append(failures, "Core rating failed: "+coreErr.Error())
		coreRes = failedSectionRating()
	}
	if expErr != nil {
		failures = append(failures, "Experience rating failed: "+expErr.Error())
		expRes = failedSectionRating()
	}
	if teamErr != nil {
		failures = append(failures, "Team rating failed: "+teamErr.Error())
		teamRes = failedSectionRating()
	}
	if priceErr != nil {
		failures = append(failures, "Price rating failed: "+priceErr.Error())
		priceRes = models.PriceRating{Score: 0, Reasoning: "Price rating failed: " + priceErr.Error()}
	}

	data := models.RatingData{
		Status:     models.RatingStatusCompleted,
		Price:      priceRes,
		Core:       coreRes,
		Experience: expRes,
		Team:       teamRes,
	}
	data.OverallScore = (coreRes.OverallScore + expRes.OverallScore + teamRes.OverallScore + priceRes.Score) / 4

	if len(failures) > 0 {
		data.Status = models.RatingStatusError
		data.ErrorMessage = "Partial rating failure: " + strings.Join(failures, "; ")
		logger.Warn().Str("error_message", data.ErrorMessage).Msg("rating completed with section failures")
	}

	return data
}

func (s *ratingService) runSection(ctx context.Context, section string, rater SectionRater, submission models.Submission, logger zerolog.Logger) (result models.SectionRating, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			observability.SectionFailures().WithLabelValues(section).Inc()
			logger.Error().Err(err).Str("section", section).Msg("section rating failed")
		}
	}()

	return rater.Rate(ctx, submission)
}

func (s *ratingService) runPrice(ctx context.Context, submission models.Submission, logger zerolog.Logger) (result models.PriceRating, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			observability.SectionFailures().WithLabelValues("price").Inc()
			logger.Error().Err(err).Str("section", "price").Msg("price rating failed")
		}
	}()

	return s.price.Rate(ctx, submission)
}

func failedSectionRating() models.SectionRating {
	return models.SectionRating{
		OverallScore:     0,
		Details:          []models.RatingDetail{},
		OverallReasoning: "Rating failed or incomplete",
	}
}

// markError transitions the submission to the error status. Failures here are
// logged but never surfaced: the original error matters more.
func (s *ratingService) markError(ctx context.Context, submissionID, message string, logger zerolog.Logger) {
	if err := s.submissions.UpdateRatingStatus(ctx, submissionID, models.RatingStatusError, message); err != nil {
		logger.Error().Err(err).Msg("failed to mark submission rating as errored")
	}
}

func (s *ratingService) publishCompleted(submissionID, procurementID string, data models.RatingData, logger zerolog.Logger) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(RatingCompletedEvent{
		SubmissionID:  submissionID,
		ProcurementID: procurementID,
		Status:        data.Status,
		OverallScore:  data.OverallScore,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to encode rating completed event")
		return
	}

	if err := s.publisher.Publish(RatingCompletedSubject, payload); err != nil {
		logger.Warn().Err(err).Msg("failed to publish rating completed event")
	}
}

func (s *ratingService) acquire(submissionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[submissionID]; busy {
		return false
	}
	s.inFlight[submissionID] = struct{}{}
	return true
}

func (s *ratingService) release(submissionID string) {
	s.mu.Lock()
	delete(s.inFlight, submissionID)
	s.mu.Unlock()
}
