package document

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// VariableUsageHandler keeps the company's variable registry in step with
// template analyses. Every detected variable gets its usage recorded;
// variables the registry has not seen yet are added with a count of one.
// Counting happens in the repository so concurrent analyses never lose
// an increment.
type VariableUsageHandler struct {
	variables templating.VariableRepository
	now       func() time.Time
}

// NewVariableUsageHandler creates a handler backed by the given registry
func NewVariableUsageHandler(variables templating.VariableRepository, now func() time.Time) *VariableUsageHandler {
	if now == nil {
		now = time.Now
	}
	return &VariableUsageHandler{variables: variables, now: now}
}

// EventTypes implements shared.EventHandler
func (h *VariableUsageHandler) EventTypes() []string {
	return []string{templating.EventTypeVariablesDetected}
}

// Handle implements shared.EventHandler
func (h *VariableUsageHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	detected, ok := event.(*templating.VariablesDetectedEvent)
	if !ok {
		return nil
	}
	if len(detected.Detected) == 0 {
		return nil
	}

	tenantID := detected.TenantID()
	if err := h.variables.RecordUsage(ctx, tenantID, detected.Detected, h.now()); err != nil {
		return fmt.Errorf("failed to record variable usage: %w", err)
	}

	logger.L(ctx).Debug("variable usage recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("template_id", detected.TemplateID.String()),
		zap.Int("variables", len(detected.Detected)),
	)
	return nil
}

var _ shared.EventHandler = (*VariableUsageHandler)(nil)
