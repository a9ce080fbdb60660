package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arisylafeta/aadf-procurement/internal/handler"
	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/service"
	"github.com/arisylafeta/aadf-procurement/internal/utils"
)

type stubRatingService struct {
	data models.RatingData
	err  error
}

func (s stubRatingService) RateSubmission(context.Context, string) (models.RatingData, error) {
	return s.data, s.err
}

func newRatingApp(svc service.RatingService) *fiber.App {
	app := fiber.New()
	h := handler.NewRatingHandler(svc, zerolog.Nop())
	h.Register(app.Group("/api/v1/submissions"))
	return app
}

func triggerRating(t *testing.T, app *fiber.App) (*http.Response, utils.APIResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions/sub-1/rate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload utils.APIResponse
	require.NoError(t, json.Unmarshal(body, &payload))

	return resp, payload
}

func TestRatingHandlerCompleted(t *testing.T) {
	app := newRatingApp(stubRatingService{data: models.RatingData{
		RatingVersion: models.RatingVersion,
		Status:        models.RatingStatusCompleted,
		OverallScore:  7.5,
	}})

	resp, payload := triggerRating(t, app)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, payload.Success)
}

func TestRatingHandlerPartialFailureReturnsRecordWith500(t *testing.T) {
	app := newRatingApp(stubRatingService{data: models.RatingData{
		RatingVersion: models.RatingVersion,
		Status:        models.RatingStatusError,
		ErrorMessage:  "Partial rating failure: Core rating failed: model timeout",
		OverallScore:  4.5,
	}})

	resp, payload := triggerRating(t, app)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.False(t, payload.Success)
	require.NotNil(t, payload.Data)

	encoded, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	require.Contains(t, string(encoded), "Partial rating failure")
}

func TestRatingHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid id", service.ErrInvalidSubmissionID, http.StatusBadRequest},
		{"not found", service.ErrSubmissionNotFound, http.StatusNotFound},
		{"missing procurement", service.ErrMissingProcurementID, http.StatusBadRequest},
		{"in progress", service.ErrRatingInProgress, http.StatusConflict},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newRatingApp(stubRatingService{err: tc.err})
			resp, payload := triggerRating(t, app)
			require.Equal(t, tc.status, resp.StatusCode)
			require.False(t, payload.Success)
		})
	}
}
