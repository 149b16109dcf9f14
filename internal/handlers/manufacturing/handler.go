// Package manufacturing serves work orders, stock, material requests and the
// production floor.
package manufacturing

import (
	"millflow/internal/workflow"

	"go.uber.org/zap"
)

// Handler holds dependencies for manufacturing handlers.
type Handler struct {
	Svc *workflow.Service
	Log *zap.Logger
}
