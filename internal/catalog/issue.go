package catalog

import "fmt"

// Issue codes. Integrity issues are E2xx, migration diagnostics W3xx and
// import diagnostics E4xx.
const (
	IssueIngredientIDMismatch = "E201" // map key differs from the stored id
	IssueIngredientIncomplete = "E202" // required ingredient field empty
	IssuePotionUnknownBase    = "E203" // potion references a missing base
	IssuePotionUnknownIngr    = "E204" // potion references a missing ingredient

	IssueMigrationDropped = "W301" // record could not be mapped and was dropped
	IssueMigrationLegacy  = "W302" // document was converted from the legacy shape

	IssueImportIncomplete = "E401" // imported record lacks required fields
	IssueImportInvalid    = "E402" // imported record is not an object / has wrong types
)

// Issue is a single finding about the catalog. Issues are reported, never
// repaired automatically.
type Issue struct {
	Code    string `json:"code"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Subject, i.Message)
}
