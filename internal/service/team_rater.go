package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/pkg/ai"
	"github.com/arisylafeta/aadf-procurement/pkg/storage"
)

// memberFileFields are the per-member document slots every role is expected
// to provide.
var memberFileFields = []string{"cv", "diplomas", "credentials"}

// teamMember is one declared role parsed out of the team payload.
type teamMember struct {
	Role            string
	FullName        string
	Profession      string
	YearsExperience string
	Files           map[string]string
}

// memberOutcome is the settled result for one team member. Failed members
// stay visible in the details but do not count toward the section mean.
type memberOutcome struct {
	role        string
	rating      float64
	reasoning   string
	fileDetails []models.RatingDetail
	failed      bool
}

// teamSectionRater evaluates team members concurrently: three document
// ratings per member feed a holistic per-member rating, and the section score
// is the mean over members whose holistic rating succeeded.
type teamSectionRater struct {
	store     DocumentStore
	docRater  ai.DocumentRater
	textRater ai.TextRater
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewTeamSectionRater constructs the team section rater.
func NewTeamSectionRater(store DocumentStore, docRater ai.DocumentRater, textRater ai.TextRater, timeout time.Duration, logger zerolog.Logger) SectionRater {
	return &teamSectionRater{
		store:     store,
		docRater:  docRater,
		textRater: textRater,
		timeout:   timeout,
		logger:    logger.With().Str("component", "team_rater").Logger(),
	}
}

func (r *teamSectionRater) Rate(ctx context.Context, submission models.Submission) (models.SectionRating, error) {
	members := parseTeamMembers(submission.TeamData)
	if len(members) == 0 {
		r.logger.Warn().Str("procurement_id", submission.ProcurementID).Msg("invalid or missing team member data")
		return emptySectionRating("Invalid or missing team member data."), nil
	}

	outcomes := make([]memberOutcome, len(members))

	var wg sync.WaitGroup
	for i, member := range members {
		wg.Add(1)
		go func(slot int, member teamMember) {
			defer wg.Done()
			outcomes[slot] = r.rateMember(ctx, submission.ProcurementID, member)
		}(i, member)
	}
	wg.Wait()

	var sum float64
	validMembers := 0
	details := make([]models.RatingDetail, 0, len(outcomes)*(len(memberFileFields)+1))
	for _, outcome := range outcomes {
		details = append(details, models.RatingDetail{
			DocumentName: fmt.Sprintf("member.%s.overall", outcome.role),
			Rating:       outcome.rating,
			Reasoning:    outcome.reasoning,
		})
		details = append(details, outcome.fileDetails...)

		if !outcome.failed {
			sum += outcome.rating
			validMembers++
		}
	}

	var overallScore float64
	if validMembers > 0 {
		overallScore = sum / float64(validMembers)
	}

	r.logger.Info().
		Int("members", len(members)).
		Int("valid_members", validMembers).
		Float64("score", overallScore).
		Msg("team section rated")

	return models.SectionRating{
		OverallScore: overallScore,
		Details:      details,
		OverallReasoning: fmt.Sprintf("Team rating based on %d evaluated members. Average score: %.1f/10. See details for individual member evaluations.",
			validMembers, overallScore),
	}, nil
}

func (r *teamSectionRater) rateMember(ctx context.Context, procurementID string, member teamMember) memberOutcome {
	fileDetails := make([]models.RatingDetail, len(memberFileFields))

	var wg sync.WaitGroup
	for i, field := range memberFileFields {
		wg.Add(1)
		go func(slot int, field string) {
			defer wg.Done()
			fileDetails[slot] = r.rateMemberFile(ctx, procurementID, member, field)
		}(i, field)
	}
	wg.Wait()

	summary := buildMemberSummary(member, fileDetails)
	prompt := fmt.Sprintf("Based on the following information and individual document ratings, "+
		"provide an overall suitability rating (0-10) for this team member (%s) and brief reasoning:\n\n%s",
		member.Role, summary)

	unitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rating, err := r.textRater.RateText(unitCtx, prompt)
	if err != nil {
		r.logger.Warn().Err(err).Str("role", member.Role).Msg("holistic member rating failed")
		return memberOutcome{
			role:        member.Role,
			rating:      0,
			reasoning:   fmt.Sprintf("Overall rating failed: %v", err),
			fileDetails: fileDetails,
			failed:      true,
		}
	}

	score := rating.Rating
	if score < 0 || score > 10 {
		score = 0
	}

	return memberOutcome{
		role:        member.Role,
		rating:      score,
		reasoning:   sanitizeReasoning(rating.Reasoning),
		fileDetails: fileDetails,
	}
}

func (r *teamSectionRater) rateMemberFile(ctx context.Context, procurementID string, member teamMember, field string) models.RatingDetail {
	name := fmt.Sprintf("%s.%s", member.Role, field)
	fileURL := member.Files[field]
	if fileURL == "" || !isDocumentURL(fileURL) {
		return models.RatingDetail{DocumentName: name, Rating: 0, Reasoning: "File URL missing or invalid."}
	}

	unitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	bucket, path, err := storage.ResolveDocumentURL(fileURL, procurementID)
	if err != nil {
		return models.RatingDetail{DocumentName: name, DocumentURL: fileURL, Rating: 0, Reasoning: fmt.Sprintf("File download failed: %v", err)}
	}

	document, err := r.store.Download(unitCtx, bucket, path)
	if err != nil {
		return models.RatingDetail{DocumentName: name, DocumentURL: fileURL, Rating: 0, Reasoning: fmt.Sprintf("File download failed: %v", err)}
	}

	profession := member.Profession
	if profession == "" {
		profession = "professional"
	}
	prompt := fmt.Sprintf("Rate the relevance and quality of this %s document for a %s in the role of %s. "+
		"Focus on clarity, completeness, and relevance to the role requirements.",
		field, profession, member.Role)

	rating, err := r.docRater.RateDocument(unitCtx, prompt, document.Data, document.MediaType)
	if err != nil {
		return models.RatingDetail{DocumentName: name, DocumentURL: fileURL, Rating: 0, Reasoning: fmt.Sprintf("AI rating failed: %v", err)}
	}

	return models.RatingDetail{
		DocumentName: name,
		DocumentURL:  fileURL,
		Rating:       rating.Rating,
		Reasoning:    sanitizeReasoning(rating.Reasoning),
	}
}

// parseTeamMembers extracts member roles from the nested team payload. Roles
// are sorted for deterministic slot assignment.
func parseTeamMembers(payload map[string]interface{}) []teamMember {
	if payload == nil {
		return nil
	}

	rawMembers, ok := payload["members"].(map[string]interface{})
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(rawMembers))
	for role := range rawMembers {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	members := make([]teamMember, 0, len(roles))
	for _, role := range roles {
		attrs, ok := rawMembers[role].(map[string]interface{})
		if !ok {
			continue
		}

		member := teamMember{
			Role:            role,
			FullName:        stringAttr(attrs, "fullName"),
			Profession:      stringAttr(attrs, "profession"),
			YearsExperience: scalarAttr(attrs, "yearsExperience"),
			Files:           map[string]string{},
		}
		for _, field := range memberFileFields {
			member.Files[field] = stringAttr(attrs, field)
		}

		members = append(members, member)
	}

	return members
}

func buildMemberSummary(member teamMember, fileDetails []models.RatingDetail) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Member Role: %s\n", member.Role)
	fmt.Fprintf(&builder, "Full Name: %s\n", orNA(member.FullName))
	fmt.Fprintf(&builder, "Profession: %s\n", orNA(member.Profession))
	fmt.Fprintf(&builder, "Years of Experience: %s\n", orNA(member.YearsExperience))
	for _, detail := range fileDetails {
		fmt.Fprintf(&builder, "%s Rating: %.0f/10 (%s)\n", detail.DocumentName, detail.Rating, detail.Reasoning)
	}

	return builder.String()
}

func stringAttr(attrs map[string]interface{}, key string) string {
	if value, ok := attrs[key].(string); ok {
		return value
	}
	return ""
}

func scalarAttr(attrs map[string]interface{}, key string) string {
	switch value := attrs[key].(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%g", value)
	case int:
		return fmt.Sprintf("%d", value)
	default:
		return ""
	}
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
