package models

import "millflow/internal/checklist"

// APIResponse is the standard JSON envelope for all API responses.
type APIResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total int `json:"total,omitempty"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Revision carries the optimistic-concurrency counter stored with every record.
type Revision struct {
	Version int `json:"version,omitempty"`
}

func (r *Revision) Rev() int     { return r.Version }
func (r *Revision) SetRev(v int) { r.Version = v }

// Sales order statuses.
const (
	SOStatusDraft        = "Draft"
	SOStatusUnderReview  = "Under Review"
	SOStatusImported     = "Imported"
	SOStatusWOGenerated  = "WO Generated"
	SOStatusInProduction = "In Production"
	SOStatusCompleted    = "Completed"
	SOStatusCancelled    = "Cancelled"
)

type LineItem struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit"`
}

type SalesOrder struct {
	Revision
	ID              string     `json:"id"`
	ClientName      string     `json:"clientName"`
	CompanyName     string     `json:"companyName"`
	OrderDate       string     `json:"orderDate"`
	DeliveryDate    string     `json:"deliveryDate"`
	Items           []LineItem `json:"items"`
	BaseAmount      float64    `json:"baseAmount"`
	GSTRate         float64    `json:"gstRate"`
	Discount        float64    `json:"discount"`
	GSTAmount       float64    `json:"gstAmount"`
	TotalOrderValue float64    `json:"totalOrderValue"`
	Status          string     `json:"status"`
	HasWorkOrder    bool       `json:"hasWorkOrder"`
	WorkOrderID     string     `json:"workOrderId,omitempty"`
	CreatedAt       string     `json:"createdAt,omitempty"`
	UpdatedAt       string     `json:"updatedAt,omitempty"`
}

func (o *SalesOrder) Key() string { return o.ID }

// Work order approval states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Work order production states.
const (
	ProductionPending    = "pending"
	ProductionReady      = "ready"
	ProductionInProgress = "in_progress"
	ProductionCompleted  = "completed"
	ProductionFailed     = "failed"
)

// Work order display statuses.
const (
	WOStatusPendingApproval    = "Pending Approval"
	WOStatusMaterialPending    = "Material Request Pending"
	WOStatusApproved           = "Approved"
	WOStatusRejected           = "Rejected"
	WOStatusInProduction       = "In Production"
	WOStatusCompleted          = "Completed"
	WOStatusQCRejected         = "QC Rejected"
	WOStatusPackagingCompleted = "Packaging Completed"
)

// Priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

type MaterialRequirement struct {
	Material       string  `json:"material"`
	RequiredQty    float64 `json:"requiredQty"`
	AvailableQty   float64 `json:"availableQty"`
	StockAvailable bool    `json:"stockAvailable"`
	NeedsReorder   bool    `json:"needsReorder"`
}

type WorkOrder struct {
	Revision
	ID                    string                `json:"id"`
	SONumber              string                `json:"soNumber"`
	ClientName            string                `json:"clientName"`
	CompanyName           string                `json:"companyName,omitempty"`
	DeliveryDate          string                `json:"deliveryDate,omitempty"`
	ExpectedCompletion    string                `json:"expectedCompletion,omitempty"`
	Items                 []LineItem            `json:"items"`
	RequiredOperations    []string              `json:"requiredOperations"`
	MaterialRequirements  []MaterialRequirement `json:"materialRequirements"`
	ApprovalStatus        string                `json:"approvalStatus"`
	ProductionStatus      string                `json:"productionStatus"`
	Status                string                `json:"status"`
	Priority              string                `json:"priority"`
	HasMaterialRequest    bool                  `json:"hasMaterialRequest"`
	MaterialRequestID     string                `json:"materialRequestId,omitempty"`
	MaterialRequestStatus string                `json:"materialRequestStatus,omitempty"`
	RejectionReason       string                `json:"rejectionReason,omitempty"`
	ApprovedAt            string                `json:"approvedAt,omitempty"`
	ApprovedBy            string                `json:"approvedBy,omitempty"`
	RejectedAt            string                `json:"rejectedAt,omitempty"`
	RejectedBy            string                `json:"rejectedBy,omitempty"`
	ProductionID          string                `json:"productionId,omitempty"`
	QCStatus              string                `json:"qcStatus,omitempty"`
	QCRemarks             string                `json:"qcRemarks,omitempty"`
	CreatedAt             string                `json:"createdAt,omitempty"`
	UpdatedAt             string                `json:"updatedAt,omitempty"`
}

func (w *WorkOrder) Key() string { return w.ID }

// StockItem is one row of the store stock snapshot.
type StockItem struct {
	Revision
	ID           string  `json:"id"`
	Material     string  `json:"material"`
	Code         string  `json:"code"`
	CurrentStock float64 `json:"currentStock"`
	MinStock     float64 `json:"minStock"`
	Unit         string  `json:"unit,omitempty"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
}

func (s *StockItem) Key() string { return s.ID }

// Material request statuses.
const (
	MRStatusPending   = "pending"
	MRStatusFulfilled = "fulfilled"
)

type MaterialShortfall struct {
	Material     string  `json:"material"`
	RequiredQty  float64 `json:"requiredQty"`
	AvailableQty float64 `json:"availableQty"`
	Shortfall    float64 `json:"shortfall"`
}

type MaterialRequest struct {
	Revision
	ID          string              `json:"id"`
	WONumber    string              `json:"woNumber"`
	Items       []MaterialShortfall `json:"items"`
	Status      string              `json:"status"`
	CreatedAt   string              `json:"createdAt,omitempty"`
	FulfilledAt string              `json:"fulfilledAt,omitempty"`
	FulfilledBy string              `json:"fulfilledBy,omitempty"`
}

func (m *MaterialRequest) Key() string { return m.ID }

// PreCheck is one of the manual production readiness confirmations.
type PreCheck struct {
	Status    bool   `json:"status"`
	CheckedAt string `json:"checkedAt,omitempty"`
	CheckedBy string `json:"checkedBy,omitempty"`
}

type ProductionRecord struct {
	Revision
	ID                  string             `json:"id"`
	WOID                string             `json:"woId"`
	TeamLeader          string             `json:"teamLeader"`
	Operators           []string           `json:"operators"`
	TechCheck           PreCheck           `json:"techCheck"`
	BOMCheck            PreCheck           `json:"bomCheck"`
	MaterialCheck       PreCheck           `json:"materialCheck"`
	QCParameters        []checklist.Result `json:"qcParameters"`
	CompletedOperations int                `json:"completedOperations"`
	TotalOperations     int                `json:"totalOperations"`
	ProductionStarted   bool               `json:"productionStarted"`
	ProductionCompleted bool               `json:"productionCompleted"`
	FinalStatus         string             `json:"finalStatus,omitempty"`
	StartedAt           string             `json:"startedAt,omitempty"`
	CompletedAt         string             `json:"completedAt,omitempty"`
	CompletedBy         string             `json:"completedBy,omitempty"`
}

func (p *ProductionRecord) Key() string { return p.ID }

// Photo is an inline image attachment stored as a data URI.
type Photo struct {
	Name       string `json:"name"`
	Data       string `json:"data"`
	UploadedAt string `json:"uploadedAt,omitempty"`
	Digest     string `json:"digest,omitempty"`
}

type QCRecord struct {
	Revision
	ID               string             `json:"id"`
	WONumber         string             `json:"woNumber"`
	InspectorName    string             `json:"inspectorName"`
	Parameters       []checklist.Result `json:"parameters"`
	OverallStatus    string             `json:"overallStatus"`
	RejectionRemarks string             `json:"rejectionRemarks,omitempty"`
	Photographs      []Photo            `json:"photographs"`
	SubmittedAt      string             `json:"submittedAt,omitempty"`
}

func (q *QCRecord) Key() string { return q.ID }

// Packaging statuses.
const (
	PackagingPending    = "Pending"
	PackagingInProgress = "In Progress"
	PackagingCompleted  = "Completed"
)

// Packaging photo slots.
const (
	SlotFinal  = "final"
	SlotDuring = "during"
	SlotAfter  = "after"
)

type PackagingPhotos struct {
	Final  *Photo `json:"final"`
	During *Photo `json:"during"`
	After  *Photo `json:"after"`
}

// Slot returns a pointer to the named slot, or nil for an unknown name.
func (p *PackagingPhotos) Slot(name string) **Photo {
	switch name {
	case SlotFinal:
		return &p.Final
	case SlotDuring:
		return &p.During
	case SlotAfter:
		return &p.After
	}
	return nil
}

// Missing lists the slots that have no photo yet.
func (p *PackagingPhotos) Missing() []string {
	var out []string
	for _, s := range []string{SlotFinal, SlotDuring, SlotAfter} {
		if *p.Slot(s) == nil {
			out = append(out, s)
		}
	}
	return out
}

type PackagingRecord struct {
	Revision
	ID                string          `json:"id"`
	WONumber          string          `json:"woNumber"`
	QCRecordID        string          `json:"qcRecordId,omitempty"`
	QCApprovedBy      string          `json:"qcApprovedBy"`
	QCApprovedDate    string          `json:"qcApprovedDate"`
	PackagingTeam     string          `json:"packagingTeam"`
	PackedQty         float64         `json:"packedQty"`
	Notes             string          `json:"notes,omitempty"`
	Photographs       PackagingPhotos `json:"photographs"`
	Status            string          `json:"status"`
	IsCompleted       bool            `json:"isCompleted"`
	NotificationsSent bool            `json:"notificationsSent"`
	CreatedAt         string          `json:"createdAt,omitempty"`
	CompletedAt       string          `json:"completedAt,omitempty"`
	CompletedBy       string          `json:"completedBy,omitempty"`
}

func (p *PackagingRecord) Key() string { return p.ID }

// Notification recipient roles.
const (
	RoleAdmin      = "Admin"
	RoleSales      = "Sales"
	RoleProduction = "Production"
	RoleQC         = "QC"
	RolePackaging  = "Packaging"
)

type Notification struct {
	Revision
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Recipient string `json:"recipient"`
	RecordID  string `json:"recordId,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func (n *Notification) Key() string { return n.ID }
