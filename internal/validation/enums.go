package validation

// Common enum values. They must match the constants in the models package.
var (
	ValidSalesOrderStatuses = []string{"Draft", "Under Review", "Imported", "WO Generated", "In Production", "Completed", "Cancelled"}
	ValidDecisions          = []string{"approved", "rejected"}
	ValidQCActions          = []string{"approve", "reject"}
	ValidPhotoSlots         = []string{"final", "during", "after"}
	ValidExportFormats      = []string{"csv", "xlsx"}
)
