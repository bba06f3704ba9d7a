package services

import (
	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
)

// StatusPolicy decides which project status changes a decorator may make.
type StatusPolicy struct {
	forwardOnly bool
}

func ForwardOnlyPolicy() StatusPolicy { return StatusPolicy{forwardOnly: true} }

func FreeFormPolicy() StatusPolicy { return StatusPolicy{} }

// PolicyNamed maps the configured name to a policy; unknown names are
// forward-only.
func PolicyNamed(name string) StatusPolicy {
	if name == "free_form" {
		return FreeFormPolicy()
	}
	return ForwardOnlyPolicy()
}

func (p StatusPolicy) ForwardOnly() bool { return p.forwardOnly }

// NextStatuses lists the statuses selectable from current, current
// included.
func (p StatusPolicy) NextStatuses(current models.ProjectStatus) []models.ProjectStatus {
	start := 0
	if p.forwardOnly {
		if i := current.Index(); i > 0 {
			start = i
		}
	}
	out := make([]models.ProjectStatus, len(models.ProjectStatusSequence)-start)
	copy(out, models.ProjectStatusSequence[start:])
	return out
}

// CheckTransition returns an error if moving from current to next is not
// allowed.
func (p StatusPolicy) CheckTransition(current, next models.ProjectStatus) error {
	if !next.Valid() {
		return apperr.ErrUnknownStatus
	}
	if p.forwardOnly && current.Valid() && next.Index() < current.Index() {
		return apperr.ErrBackwardTransition
	}
	return nil
}
