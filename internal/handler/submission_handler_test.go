package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arisylafeta/aadf-procurement/internal/dto"
	"github.com/arisylafeta/aadf-procurement/internal/handler"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
	"github.com/arisylafeta/aadf-procurement/internal/service"
)

type stubSubmissionService struct {
	created dto.SubmissionResponse
	list    []dto.SubmissionResponse
	err     error

	lastFilter repository.SubmissionFilter
}

func (s *stubSubmissionService) Create(_ context.Context, _ dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	return s.created, s.err
}

func (s *stubSubmissionService) List(_ context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	s.lastFilter = filter
	return s.list, s.err
}

func (s *stubSubmissionService) Get(context.Context, string) (dto.SubmissionResponse, error) {
	return s.created, s.err
}

func newSubmissionApp(svc *stubSubmissionService) *fiber.App {
	app := fiber.New()
	h := handler.NewSubmissionHandler(svc, zerolog.Nop())
	h.Register(app.Group("/api/v1/submissions"))
	return app
}

func TestSubmissionHandlerCreate(t *testing.T) {
	svc := &stubSubmissionService{created: dto.SubmissionResponse{SubmissionID: "sub-1", RatingStatus: "pending"}}
	app := newSubmissionApp(svc)

	body, err := json.Marshal(dto.SubmissionCreateRequest{ProcurementID: "proc-1", BidderName: "Acme"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSubmissionHandlerCreateInvalidBody(t *testing.T) {
	app := newSubmissionApp(&stubSubmissionService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionHandlerCreateUnknownProcurement(t *testing.T) {
	app := newSubmissionApp(&stubSubmissionService{err: service.ErrProcurementNotFound})

	body, err := json.Marshal(dto.SubmissionCreateRequest{ProcurementID: "missing", BidderName: "Acme"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmissionHandlerListPassesFilters(t *testing.T) {
	svc := &stubSubmissionService{list: []dto.SubmissionResponse{}}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?procurement_id=proc-1&rating_status=completed", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, svc.lastFilter.ProcurementID)
	require.Equal(t, "proc-1", *svc.lastFilter.ProcurementID)
	require.NotNil(t, svc.lastFilter.RatingStatus)
	require.Equal(t, "completed", *svc.lastFilter.RatingStatus)
}

func TestSubmissionHandlerGetNotFound(t *testing.T) {
	app := newSubmissionApp(&stubSubmissionService{err: service.ErrSubmissionNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
