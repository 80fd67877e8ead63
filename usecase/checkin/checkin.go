package checkin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/pkg/geo"
	"github.com/namviet/fieldops/repository"
	"github.com/namviet/fieldops/usecase"
)

// Direction selects which end of the visit is being recorded.
type Direction string

const (
	DirectionCheckIn  Direction = "CHECK_IN"
	DirectionCheckOut Direction = "CHECK_OUT"
)

// Request carries one verification attempt.
type Request struct {
	TaskID       string
	ActingUserID string
	Latitude     float64
	Longitude    float64
	Direction    Direction

	// Payment may accompany a check-out; it is persisted in the same
	// transaction as the status change.
	Payment *domain.Payment
}

// Result is returned on acceptance and, with Accepted=false, alongside a
// LOCATION_REJECTED error so the client can show the measured distance.
type Result struct {
	Accepted       bool              `json:"accepted"`
	DistanceMeters float64           `json:"distance_meters"`
	Warning        string            `json:"warning,omitempty"`
	Bypassed       bool              `json:"bypassed,omitempty"`
	NewStatus      domain.TaskStatus `json:"new_status,omitempty"`
}

// Service verifies a worker's reported position against the task site
// and applies the matching lifecycle transition atomically with its
// audit record.
type Service struct {
	tasks      repository.TaskRepository
	locations  repository.LocationRepository
	identities usecase.IdentityProvider
	policy     geo.Policy
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	tasks repository.TaskRepository,
	locations repository.LocationRepository,
	identities usecase.IdentityProvider,
	policy geo.Policy,
	logger *zap.Logger,
) *Service {
	if policy.AcceptRadiusMeters <= 0 {
		policy = geo.DefaultPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tasks:      tasks,
		locations:  locations,
		identities: identities,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

type auditPayload struct {
	TaskID         string  `json:"task_id"`
	Direction      string  `json:"direction"`
	ReportedLat    float64 `json:"reported_lat"`
	ReportedLng    float64 `json:"reported_lng"`
	DistanceMeters float64 `json:"distance_meters"`
	Warning        string  `json:"warning,omitempty"`
	DemoBypass     bool    `json:"demo_bypass,omitempty"`
	NoTargetSite   bool    `json:"no_target_site,omitempty"`
}

// VerifyAndRecord runs the full check-in/check-out flow. On rejection
// the returned Result carries the measured distance and the error code
// is LOCATION_REJECTED; no state is mutated.
func (s *Service) VerifyAndRecord(ctx context.Context, req Request) (*Result, error) {
	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	demo := s.isDemo(ctx, req.ActingUserID)

	if !task.IsAssignee(req.ActingUserID) && !demo {
		return nil, domain.ErrUnauthorized
	}

	from, to, err := edgeFor(req.Direction)
	if err != nil {
		return nil, err
	}
	if task.Status != from {
		return nil, domain.NewInvalidTransition(task.Status, to)
	}

	payload := auditPayload{
		TaskID:      task.ID,
		Direction:   string(req.Direction),
		ReportedLat: req.Latitude,
		ReportedLng: req.Longitude,
	}
	result := &Result{Accepted: true}

	switch {
	case demo:
		// Review accounts skip verification unconditionally, but the
		// bypass must stay traceable in the audit trail.
		payload.DemoBypass = true
		result.Bypassed = true
	case task.LocationID == nil:
		// Location-agnostic task: nothing to verify against.
		payload.NoTargetSite = true
	default:
		site, err := s.locations.GetByID(ctx, *task.LocationID)
		if err != nil {
			return nil, err
		}
		distance := geo.Distance(req.Latitude, req.Longitude, site.Latitude, site.Longitude)
		payload.DistanceMeters = distance
		result.DistanceMeters = distance

		switch s.policy.Evaluate(distance) {
		case geo.AcceptWithWarning:
			warning := warningText(distance, s.policy.AcceptRadiusMeters)
			payload.Warning = warning
			result.Warning = warning
		case geo.Reject:
			result.Accepted = false
			return result, domain.NewLocationRejected(distance, s.policy.WarnRadiusMeters)
		}
	}

	params, err := s.transitionParams(task, req, from, to, payload)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Transition(ctx, params); err != nil {
		return nil, err
	}

	result.NewStatus = to
	s.logger.Info("check recorded",
		zap.String("task_id", task.ID),
		zap.String("user_id", req.ActingUserID),
		zap.String("direction", string(req.Direction)),
		zap.Float64("distance_m", result.DistanceMeters),
		zap.Bool("bypassed", result.Bypassed))
	return result, nil
}

func (s *Service) transitionParams(task *domain.Task, req Request, from, to domain.TaskStatus, payload auditPayload) (repository.TransitionParams, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return repository.TransitionParams{}, err
	}

	action := domain.ActionTaskCheckedIn
	if req.Direction == DirectionCheckOut {
		action = domain.ActionTaskCompleted
	}

	params := repository.TransitionParams{
		TaskID: task.ID,
		From:   from,
		To:     to,
		Activity: &domain.Activity{
			UserID:  req.ActingUserID,
			Topic:   domain.TopicTask,
			Action:  action,
			Payload: raw,
		},
	}

	now := s.now()
	if req.Direction == DirectionCheckIn {
		params.StartedAt = &now
	} else {
		params.CompletedAt = &now
		if req.Payment != nil {
			payment := *req.Payment
			payment.TaskID = task.ID
			payment.CollectedBy = req.ActingUserID
			if payment.CollectedAt.IsZero() {
				payment.CollectedAt = now
			}
			params.Payment = &payment
		}
	}
	return params, nil
}

// isDemo resolves the review-account flag through the identity provider.
// Lookup failures are logged and treated as "not demo": a provider
// outage must not grant a location bypass.
func (s *Service) isDemo(ctx context.Context, userID string) bool {
	if s.identities == nil {
		return false
	}
	record, err := s.identities.GetUser(ctx, userID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			s.logger.Warn("identity lookup failed during check-in", zap.String("user_id", userID), zap.Error(err))
		}
		return false
	}
	return record.Demo
}

func edgeFor(direction Direction) (from, to domain.TaskStatus, err error) {
	switch direction {
	case DirectionCheckIn:
		return domain.StatusReady, domain.StatusInProgress, nil
	case DirectionCheckOut:
		return domain.StatusInProgress, domain.StatusCompleted, nil
	default:
		return "", "", domain.NewError(domain.ErrCodeInvalid, "unknown direction")
	}
}

func warningText(distance, acceptRadius float64) string {
	return fmt.Sprintf("position %.0fm from the task site exceeds the %.0fm radius; flagged for review", distance, acceptRadius)
}
