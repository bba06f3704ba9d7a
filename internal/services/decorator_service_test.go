package services_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
)

func TestStatusPolicy_ForwardOnly(t *testing.T) {
	p := services.ForwardOnlyPolicy()

	assert.NoError(t, p.CheckTransition(models.ProjectAssigned, models.ProjectOnTheWay))
	assert.NoError(t, p.CheckTransition(models.ProjectPlanning, models.ProjectPlanning))
	assert.ErrorIs(t, p.CheckTransition(models.ProjectOnTheWay, models.ProjectPlanning), apperr.ErrBackwardTransition)
	assert.ErrorIs(t, p.CheckTransition(models.ProjectAssigned, "paused"), apperr.ErrUnknownStatus)

	assert.Equal(t, []models.ProjectStatus{models.ProjectSetupInProgress, models.ProjectCompleted},
		p.NextStatuses(models.ProjectSetupInProgress))
}

func TestStatusPolicy_FreeForm(t *testing.T) {
	p := services.PolicyNamed("free_form")

	assert.False(t, p.ForwardOnly())
	assert.NoError(t, p.CheckTransition(models.ProjectCompleted, models.ProjectAssigned))
	assert.Len(t, p.NextStatuses(models.ProjectCompleted), len(models.ProjectStatusSequence))
}

func TestAdvanceStatus_RejectsOtherDecorators(t *testing.T) {
	backend := &mockBackend{}
	svc := services.NewDecoratorService(backend, services.ForwardOnlyPolicy(), zerolog.Nop())
	b := models.Booking{ID: "b1", AssignedDecoratorEmail: "dee@example.com"}

	_, err := svc.AdvanceStatus(context.Background(), "zed@example.com", b, models.ProjectPlanning)

	assert.ErrorIs(t, err, apperr.ErrNotAssignedToYou)
	backend.AssertNotCalled(t, "UpdateProjectStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceStatus_SameStatusMakesNoCall(t *testing.T) {
	backend := &mockBackend{}
	svc := services.NewDecoratorService(backend, services.ForwardOnlyPolicy(), zerolog.Nop())
	b := models.Booking{ID: "b1", AssignedDecoratorEmail: "dee@example.com"}

	got, err := svc.AdvanceStatus(context.Background(), "dee@example.com", b, models.ProjectAssigned)

	require.NoError(t, err)
	assert.Equal(t, b, got)
	backend.AssertNotCalled(t, "UpdateProjectStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceStatus_BackwardRejectedLocally(t *testing.T) {
	backend := &mockBackend{}
	svc := services.NewDecoratorService(backend, services.ForwardOnlyPolicy(), zerolog.Nop())
	b := models.Booking{ID: "b1", AssignedDecoratorEmail: "dee@example.com", ProjectStatus: models.ProjectOnTheWay}

	_, err := svc.AdvanceStatus(context.Background(), "dee@example.com", b, models.ProjectPlanning)

	assert.ErrorIs(t, err, apperr.ErrBackwardTransition)
	backend.AssertNotCalled(t, "UpdateProjectStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindAssignedProject(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ListDecoratorBookings", mock.Anything, "dee@example.com").Return([]models.Booking{
		{ID: "b1", AssignedDecoratorEmail: "dee@example.com", ProjectStatus: models.ProjectSetupInProgress},
	}, nil)
	svc := services.NewDecoratorService(backend, services.ForwardOnlyPolicy(), zerolog.Nop())

	got, err := svc.FindAssignedProject(context.Background(), "dee@example.com", "b1")
	require.NoError(t, err)
	assert.Equal(t, models.ProjectSetupInProgress, got.ProjectStatus)

	_, err = svc.FindAssignedProject(context.Background(), "dee@example.com", "b2")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// A decorator completes a project and it shows up in their earnings.
func TestCompletedProjectCountsTowardEarnings(t *testing.T) {
	backend := &mockBackend{}
	b := models.Booking{
		ID: "b1", AssignedDecoratorEmail: "dee@example.com", ProjectStatus: models.ProjectSetupInProgress,
		Paid: true, TotalCost: decimal.NewFromInt(1200),
	}
	backend.On("UpdateProjectStatus", mock.Anything, "b1", models.ProjectCompleted).Return(nil).Once()
	svc := services.NewDecoratorService(backend, services.ForwardOnlyPolicy(), zerolog.Nop())

	updated, err := svc.AdvanceStatus(context.Background(), "dee@example.com", b, models.ProjectCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, updated.ProjectStatus)

	backend.On("GetEarnings", mock.Anything, "dee@example.com").Return(&models.Earnings{
		TotalEarnings:     decimal.NewFromInt(1200),
		TotalProjects:     1,
		CompletedBookings: []models.Booking{updated},
	}, nil)

	earnings, err := svc.GetEarnings(context.Background(), "dee@example.com")
	require.NoError(t, err)
	assert.True(t, earnings.TotalEarnings.Equal(decimal.NewFromInt(1200)))
	require.Len(t, earnings.CompletedBookings, 1)
	assert.Equal(t, "b1", earnings.CompletedBookings[0].ID)
	backend.AssertExpectations(t)
}

func TestPartition_TodayAndOther(t *testing.T) {
	svc := services.NewDecoratorService(&mockBackend{}, services.ForwardOnlyPolicy(), zerolog.Nop())
	today := models.NewDate(2026, 10, 16)
	bookings := []models.Booking{
		{ID: "later", BookingDate: models.NewDate(2026, 11, 2), AssignedDecoratorEmail: "d"},
		{ID: "today", BookingDate: today, AssignedDecoratorEmail: "d", ProjectStatus: models.ProjectOnTheWay},
		{ID: "soon", BookingDate: models.NewDate(2026, 10, 20), AssignedDecoratorEmail: "d"},
	}

	page := svc.Partition(bookings, today)

	require.Len(t, page.Today, 1)
	assert.Equal(t, "today", page.Today[0].ID)
	assert.Equal(t, models.ProjectOnTheWay, page.Today[0].CurrentStatus)
	assert.Len(t, page.Today[0].NextStatuses, 3)

	require.Len(t, page.Other, 2)
	assert.Equal(t, "soon", page.Other[0].ID)
	assert.Equal(t, "later", page.Other[1].ID)
	assert.Equal(t, models.ProjectAssigned, page.Other[0].CurrentStatus)
}
