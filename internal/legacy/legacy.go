// Package legacy reads document exports written by older browser builds of
// the tracker. Those builds did not agree on field names, so every record is
// read tolerantly: the canonical field, else the first alias present, else a
// default.
package legacy

import (
	"encoding/json"
	"fmt"
	"strings"

	"millflow/internal/models"
	"millflow/internal/store"
)

// alias maps a canonical field to the names older exports used for it.
type alias struct {
	field string
	alts  []string
}

var aliases = map[string][]alias{
	store.CollSalesOrders: {
		{"id", []string{"soNumber", "soId", "orderId"}},
		{"clientName", []string{"customerName", "client"}},
		{"totalOrderValue", []string{"totalAmount", "total"}},
		{"workOrderId", []string{"woNumber", "woId"}},
	},
	store.CollWorkOrders: {
		{"id", []string{"woNumber", "woId", "workOrderId"}},
		{"soNumber", []string{"salesOrderId", "soId"}},
		{"clientName", []string{"customerName", "client"}},
	},
	store.CollProductionRecords: {
		{"woId", []string{"woNumber", "workOrderId"}},
		{"qcParameters", []string{"parameters"}},
	},
	store.CollQCRecords: {
		{"woNumber", []string{"woId", "workOrderId"}},
		{"inspectorName", []string{"inspector"}},
		{"parameters", []string{"qcParameters"}},
	},
	store.CollPackagingRecords: {
		{"woNumber", []string{"woId", "workOrderId"}},
		{"packedQty", []string{"quantity", "qty"}},
	},
	store.CollStoreStock: {
		{"material", []string{"name", "materialName"}},
		{"currentStock", []string{"quantity", "qty", "stock"}},
	},
	store.CollMaterialRequests: {
		{"woNumber", []string{"woId", "workOrderId"}},
		{"items", []string{"materials"}},
	},
	store.CollNotifications: {
		{"recipient", []string{"role", "to"}},
		{"read", []string{"isRead"}},
		{"createdAt", []string{"timestamp"}},
	},
}

// defaults fill fields that are still missing after alias resolution.
var defaults = map[string]map[string]any{
	store.CollSalesOrders:       {"status": models.SOStatusImported, "items": []any{}},
	store.CollWorkOrders:        {"approvalStatus": models.ApprovalPending, "productionStatus": models.ProductionPending, "priority": models.PriorityMedium, "items": []any{}, "requiredOperations": []any{}, "materialRequirements": []any{}},
	store.CollMaterialRequests:  {"status": models.MRStatusPending, "items": []any{}},
	store.CollPackagingRecords:  {"status": models.PackagingPending},
	store.CollNotifications:     {"recipient": models.RoleAdmin},
	store.CollQCRecords:         {"photographs": []any{}},
	store.CollProductionRecords: {"operators": []any{}},
}

func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	}
	return true
}

// Normalize rewrites one exported record into the current shape. It returns
// the record id, or "" when the record has none and must be skipped.
func Normalize(collection string, raw json.RawMessage) (string, json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", nil, fmt.Errorf("%s: %w", collection, err)
	}
	if doc == nil {
		return "", nil, nil
	}
	for _, a := range aliases[collection] {
		if present(doc[a.field]) {
			continue
		}
		for _, alt := range a.alts {
			if present(doc[alt]) {
				doc[a.field] = doc[alt]
				break
			}
		}
	}
	for k, v := range defaults[collection] {
		if !present(doc[k]) {
			doc[k] = v
		}
	}
	if collection == store.CollSalesOrders {
		if _, ok := doc["hasWorkOrder"]; !ok {
			doc["hasWorkOrder"] = present(doc["workOrderId"])
		}
	}
	if collection == store.CollPackagingRecords {
		if _, ok := doc["isCompleted"]; !ok {
			doc["isCompleted"] = doc["status"] == models.PackagingCompleted
		}
	}
	doc["version"] = 1

	id := idOf(doc["id"])
	if id == "" {
		return "", nil, nil
	}
	doc["id"] = id
	body, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("%s %s: %w", collection, id, err)
	}
	return id, body, nil
}

// idOf accepts string or numeric ids; older builds used Date.now() numbers.
func idOf(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return fmt.Sprintf("%.0f", x)
	}
	return ""
}

// Collection is one restored collection ready for store.ReplaceCollection.
type Collection struct {
	Records map[string]json.RawMessage
	Order   []string
	Skipped int
}

// ReadCollection normalizes every record of an exported collection. Records
// without an id are skipped and a repeated id keeps the last occurrence.
func ReadCollection(collection string, raw json.RawMessage) (*Collection, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s must be an array: %w", collection, err)
	}
	out := &Collection{Records: make(map[string]json.RawMessage, len(items))}
	for _, item := range items {
		id, body, err := Normalize(collection, item)
		if err != nil {
			return nil, err
		}
		if id == "" {
			out.Skipped++
			continue
		}
		if _, dup := out.Records[id]; !dup {
			out.Order = append(out.Order, id)
		}
		out.Records[id] = body
	}
	return out, nil
}
