// Package common serves the cross-cutting endpoints: notifications, exports,
// backup/restore and the audit log.
package common

import (
	"millflow/internal/workflow"

	"go.uber.org/zap"
)

// Handler holds dependencies for common/shared handlers.
type Handler struct {
	Svc *workflow.Service
	Log *zap.Logger
}
