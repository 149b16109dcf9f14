package workflow

import (
	"time"

	"millflow/internal/config"
	"millflow/internal/models"
	"millflow/internal/rules"
)

// Planner derives a work order and its material shortfalls from a sales
// order and a stock snapshot. It does no I/O.
type Planner struct {
	cfg   config.WorkflowConfig
	rules config.RulesConfig
}

// NewPlanner builds a Planner.
func NewPlanner(cfg config.WorkflowConfig, r config.RulesConfig) *Planner {
	return &Planner{cfg: cfg, rules: r}
}

// Plan is the derived part of a new work order.
type Plan struct {
	RequiredOperations   []string
	MaterialRequirements []models.MaterialRequirement
	Shortfalls           []models.MaterialShortfall
	Priority             string
	ExpectedCompletion   string
	Status               string
}

// Build derives the plan for so as of now.
func (p *Planner) Build(so *models.SalesOrder, stock []models.StockItem, now time.Time) Plan {
	reqs := p.MaterialRequirements(so.Items, stock)
	var short []models.MaterialShortfall
	for _, r := range reqs {
		if r.StockAvailable {
			continue
		}
		short = append(short, models.MaterialShortfall{
			Material:     r.Material,
			RequiredQty:  r.RequiredQty,
			AvailableQty: r.AvailableQty,
			Shortfall:    r.RequiredQty - r.AvailableQty,
		})
	}
	status := models.WOStatusPendingApproval
	if len(short) > 0 {
		status = models.WOStatusMaterialPending
	}
	priority := p.Priority(so.DeliveryDate, now)
	return Plan{
		RequiredOperations:   p.RequiredOperations(so.Items),
		MaterialRequirements: reqs,
		Shortfalls:           short,
		Priority:             priority,
		ExpectedCompletion:   p.ExpectedCompletion(so.DeliveryDate, priority, now),
		Status:               status,
	}
}

// MaterialRequirements classifies every item, sums quantities per material
// in first-seen order and checks each total against stock by exact name.
func (p *Planner) MaterialRequirements(items []models.LineItem, stock []models.StockItem) []models.MaterialRequirement {
	var order []string
	totals := make(map[string]float64)
	for _, it := range items {
		material, ok := p.rules.Materials.Lookup(it.Description)
		if !ok {
			continue
		}
		if _, seen := totals[material]; !seen {
			order = append(order, material)
		}
		totals[material] += it.Qty
	}

	reqs := make([]models.MaterialRequirement, 0, len(order))
	for _, m := range order {
		reqs = append(reqs, requirementFor(m, totals[m], stock))
	}
	return reqs
}

func requirementFor(material string, required float64, stock []models.StockItem) models.MaterialRequirement {
	r := models.MaterialRequirement{Material: material, RequiredQty: required, NeedsReorder: true}
	for _, s := range stock {
		if s.Material != material {
			continue
		}
		r.AvailableQty = s.CurrentStock
		r.NeedsReorder = s.CurrentStock-required < s.MinStock
		break
	}
	r.StockAvailable = r.AvailableQty >= r.RequiredQty
	return r
}

// RequiredOperations is the ordered union of every item's operation list.
func (p *Planner) RequiredOperations(items []models.LineItem) []string {
	lists := make([][]string, 0, len(items))
	for _, it := range items {
		ops, ok := p.rules.Operations.Lookup(it.Description)
		if ok {
			lists = append(lists, ops)
		}
	}
	out := rules.Union(lists...)
	if out == nil {
		out = []string{}
	}
	return out
}

// Priority derives the priority from the days left until deliveryDate.
// A missing or unparseable date is Medium.
func (p *Planner) Priority(deliveryDate string, now time.Time) string {
	due, ok := parseDate(deliveryDate)
	if !ok {
		return models.PriorityMedium
	}
	days := daysBetween(now, due)
	switch {
	case days <= p.cfg.HighPriorityDays:
		return models.PriorityHigh
	case days <= p.cfg.MediumPriorityDays:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// ExpectedCompletion is the delivery date when present, otherwise today plus
// the lead time. Unless HonorPriorityLeadTime is set the Medium lead time is
// used for every priority.
func (p *Planner) ExpectedCompletion(deliveryDate, priority string, now time.Time) string {
	if deliveryDate != "" {
		return deliveryDate
	}
	key := models.PriorityMedium
	if p.cfg.HonorPriorityLeadTime {
		if _, ok := p.cfg.LeadTimeDays[priority]; ok {
			key = priority
		}
	}
	return now.AddDate(0, 0, p.cfg.LeadTimeDays[key]).Format("2006-01-02")
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// daysBetween counts calendar days from now's date to due.
func daysBetween(now, due time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24)
}
