// Package graph provides the quality knowledge graph consulted by the lookup
// stage. It models investigations, CAPA work items, brands and manufacturing
// batches with the relationships between them (investigation -> CAPA,
// investigation -> batch, brand -> everything).
//
// The default store is an in-memory fixture mirroring the shape of the
// production graph database, which keeps the pipeline runnable without
// external infrastructure.
package graph

// Investigation is a quality investigation node.
type Investigation struct {
	ID           string `json:"id"`
	CAPAID       string `json:"capa_id"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	BatchNumber  string `json:"batch_number"`
	Status       string `json:"status"`
	CreatedDate  string `json:"created_date"`
	PDFLink      string `json:"pdf_link"`
	Investigator string `json:"investigator"`
	Department   string `json:"department"`
}

// CAPADetail carries the graph-side view of a CAPA work item.
type CAPADetail struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	CreatedDate string `json:"created_date"`
	DueDate     string `json:"due_date"`
	AssignedTo  string `json:"assigned_to"`
}

// Brand is a product brand node.
type Brand struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TherapeuticArea  string `json:"therapeutic_area"`
	ActiveIngredient string `json:"active_ingredient"`
	MarketStatus     string `json:"market_status"`
	ApprovalDate     string `json:"approval_date"`
}

// Batch is a manufacturing batch node.
type Batch struct {
	BatchNumber     string `json:"batch_number"`
	Brand           string `json:"brand"`
	ManufactureDate string `json:"manufacture_date"`
	ExpiryDate      string `json:"expiry_date"`
	Quantity        string `json:"quantity"`
	Status          string `json:"status"`
}

// BrandSummary aggregates everything the graph knows about one brand.
type BrandSummary struct {
	Brand              Brand           `json:"brand_info"`
	InvestigationCount int             `json:"investigation_count"`
	Investigations     []Investigation `json:"investigations"`
	BatchCount         int             `json:"batch_count"`
	Batches            []Batch         `json:"batches"`
}

// RelatedEntity is a typed edge target returned by RelatedEntities.
type RelatedEntity struct {
	Type string `json:"type"` // "investigation", "capa" or "batch"
	Data any    `json:"data"`
}

// Entity type names accepted by RelatedEntities.
const (
	EntityCAPA          = "capa"
	EntityInvestigation = "investigation"
	EntityBatch         = "batch"
)
