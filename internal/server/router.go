package server

import (
	"net/http"
	"strings"
	"time"

	"millflow/internal/handlers/common"
	"millflow/internal/handlers/manufacturing"
	"millflow/internal/handlers/packaging"
	"millflow/internal/handlers/quality"
	"millflow/internal/handlers/sales"
	"millflow/internal/response"
	"millflow/internal/websocket"
)

// Handler returns the full HTTP handler: the API router, the websocket
// endpoint and the middleware stack.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.HandleWebSocket(a.Hub, w, r)
	})
	mux.HandleFunc("/healthz", a.health)
	mux.Handle("/api/v1/", a.apiRouter())

	mw := []func(http.Handler) http.Handler{
		RecoverMiddleware(a.Log),
		LoggingMiddleware(a.Log.Named("http")),
		SecurityHeaders,
	}
	if a.Config.Server.RateLimit > 0 {
		mw = append(mw, RateLimitMiddleware(NewRateLimiter(a.Config.Server.RateLimit, time.Minute)))
	}
	mw = append(mw, GzipMiddleware)
	return Chain(mux, mw...)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.DB().PingContext(r.Context()); err != nil {
		response.Err(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	response.JSON(w, map[string]interface{}{"status": "ok", "clients": a.Hub.ClientCount()})
}

func (a *App) apiRouter() http.Handler {
	salesH := &sales.Handler{Svc: a.Service, Log: a.Log}
	mfgH := &manufacturing.Handler{Svc: a.Service, Log: a.Log}
	qcH := &quality.Handler{Svc: a.Service, Log: a.Log}
	pkgH := &packaging.Handler{Svc: a.Service, Log: a.Log}
	commonH := &common.Handler{Svc: a.Service, Log: a.Log}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
		path = strings.TrimSuffix(path, "/")
		parts := strings.Split(path, "/")
		n := len(parts)

		switch {
		// Sales orders
		case parts[0] == "salesorders" && n == 1 && r.Method == "GET":
			salesH.ListSalesOrders(w, r)
		case parts[0] == "salesorders" && n == 1 && r.Method == "POST":
			salesH.CreateSalesOrder(w, r)
		case parts[0] == "salesorders" && n == 2 && r.Method == "GET":
			salesH.GetSalesOrder(w, r, parts[1])
		case parts[0] == "salesorders" && n == 2 && r.Method == "PUT":
			salesH.UpdateSalesOrder(w, r, parts[1])
		case parts[0] == "salesorders" && n == 2 && r.Method == "DELETE":
			salesH.DeleteSalesOrder(w, r, parts[1])

		// Work orders
		case parts[0] == "workorders" && n == 1 && r.Method == "GET":
			mfgH.ListWorkOrders(w, r)
		case parts[0] == "workorders" && n == 3 && parts[1] == "from-so" && r.Method == "POST":
			mfgH.CreateFromSalesOrder(w, r, parts[2])
		case parts[0] == "workorders" && n == 2 && r.Method == "GET":
			mfgH.GetWorkOrder(w, r, parts[1])
		case parts[0] == "workorders" && n == 2 && r.Method == "DELETE":
			mfgH.DeleteWorkOrder(w, r, parts[1])
		case parts[0] == "workorders" && n == 3 && parts[2] == "approve" && r.Method == "POST":
			mfgH.ApproveWorkOrder(w, r, parts[1])
		case parts[0] == "workorders" && n == 3 && parts[2] == "reject" && r.Method == "POST":
			mfgH.RejectWorkOrder(w, r, parts[1])

		// Stock and material requests
		case parts[0] == "stock" && n == 1 && r.Method == "GET":
			mfgH.ListStock(w, r)
		case parts[0] == "stock" && n == 1 && r.Method == "POST":
			mfgH.CreateStockItem(w, r)
		case parts[0] == "stock" && n == 2 && r.Method == "PUT":
			mfgH.UpdateStockItem(w, r, parts[1])
		case parts[0] == "stock" && n == 2 && r.Method == "DELETE":
			mfgH.DeleteStockItem(w, r, parts[1])
		case parts[0] == "materialrequests" && n == 1 && r.Method == "GET":
			mfgH.ListMaterialRequests(w, r)
		case parts[0] == "materialrequests" && n == 3 && parts[2] == "fulfill" && r.Method == "POST":
			mfgH.FulfillMaterialRequest(w, r, parts[1])

		// Production
		case parts[0] == "production" && n == 1 && r.Method == "GET":
			mfgH.ListProduction(w, r)
		case parts[0] == "production" && n == 1 && r.Method == "POST":
			mfgH.StartProduction(w, r)
		case parts[0] == "production" && n == 2 && r.Method == "GET":
			mfgH.GetProduction(w, r, parts[1])
		case parts[0] == "production" && n == 4 && parts[2] == "parameters" && r.Method == "PUT":
			mfgH.SetParameter(w, r, parts[1], parts[3])
		case parts[0] == "production" && n == 3 && parts[2] == "complete" && r.Method == "POST":
			mfgH.CompleteProduction(w, r, parts[1])

		// QC
		case parts[0] == "qc" && n == 1 && r.Method == "GET":
			qcH.ListInspections(w, r)
		case parts[0] == "qc" && n == 1 && r.Method == "POST":
			qcH.SubmitInspection(w, r)
		case parts[0] == "qc" && n == 2 && r.Method == "GET":
			qcH.GetInspection(w, r, parts[1])

		// Packaging
		case parts[0] == "packaging" && n == 1 && r.Method == "GET":
			pkgH.List(w, r)
		case parts[0] == "packaging" && n == 1 && r.Method == "POST":
			pkgH.Create(w, r)
		case parts[0] == "packaging" && n == 2 && parts[1] == "eligible" && r.Method == "GET":
			pkgH.Eligible(w, r)
		case parts[0] == "packaging" && n == 2 && r.Method == "GET":
			pkgH.Get(w, r, parts[1])
		case parts[0] == "packaging" && n == 2 && r.Method == "PUT":
			pkgH.SaveDraft(w, r, parts[1])
		case parts[0] == "packaging" && n == 4 && parts[2] == "photos" && r.Method == "PUT":
			pkgH.SetPhoto(w, r, parts[1], parts[3])
		case parts[0] == "packaging" && n == 3 && parts[2] == "complete" && r.Method == "POST":
			pkgH.Complete(w, r, parts[1])
		case parts[0] == "packaging" && n == 3 && parts[2] == "label" && r.Method == "GET":
			pkgH.Label(w, r, parts[1])

		// Notifications
		case parts[0] == "notifications" && n == 1 && r.Method == "GET":
			commonH.ListNotifications(w, r)
		case parts[0] == "notifications" && n == 2 && parts[1] == "read-all" && r.Method == "POST":
			commonH.MarkAllNotificationsRead(w, r)
		case parts[0] == "notifications" && n == 3 && parts[2] == "read" && r.Method == "POST":
			commonH.MarkNotificationRead(w, r, parts[1])

		// Export, backup, audit
		case path == "export/workorders" && r.Method == "GET":
			commonH.ExportWorkOrders(w, r)
		case path == "export/production" && r.Method == "GET":
			commonH.ExportProduction(w, r)
		case path == "backup" && r.Method == "GET":
			commonH.Backup(w, r)
		case path == "restore" && r.Method == "POST":
			commonH.Restore(w, r)
		case path == "audit" && r.Method == "GET":
			commonH.AuditLog(w, r)

		default:
			response.Err(w, "not found", http.StatusNotFound)
		}
	})
}
