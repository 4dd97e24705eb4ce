package graph

// seedFixture loads the development dataset. It mirrors the shape of the
// production graph for the Avino brand: three investigations, each linked to
// one CAPA and one batch, plus detail records for two of the CAPAs.
func seedFixture(s *InMemoryStore) {
	s.AddInvestigation(Investigation{
		ID:           "INV001",
		CAPAID:       "CAPA2024001",
		Name:         "Quality Investigation - Batch Deviation",
		Brand:        "Avino",
		BatchNumber:  "AV2024001",
		Status:       "Open",
		CreatedDate:  "2024-01-15",
		PDFLink:      "https://documents.company.com/investigations/INV001.pdf",
		Investigator: "Dr. Smith",
		Department:   "Quality Assurance",
	})
	s.AddInvestigation(Investigation{
		ID:           "INV002",
		CAPAID:       "CAPA2024002",
		Name:         "Manufacturing Investigation - Process Deviation",
		Brand:        "Avino",
		BatchNumber:  "AV2024002",
		Status:       "In Progress",
		CreatedDate:  "2024-02-10",
		PDFLink:      "https://documents.company.com/investigations/INV002.pdf",
		Investigator: "Dr. Johnson",
		Department:   "Manufacturing",
	})
	s.AddInvestigation(Investigation{
		ID:           "INV003",
		CAPAID:       "CAPA2024003",
		Name:         "Clinical Investigation - Adverse Event",
		Brand:        "Avino",
		BatchNumber:  "AV2024003",
		Status:       "Closed",
		CreatedDate:  "2024-03-05",
		PDFLink:      "https://documents.company.com/investigations/INV003.pdf",
		Investigator: "Dr. Wilson",
		Department:   "Clinical Affairs",
	})

	s.AddCAPA(CAPADetail{
		ID:          "CAPA2024001",
		Title:       "Improve Batch Documentation Process",
		Status:      "Open",
		CreatedDate: "2024-01-15",
		DueDate:     "2024-06-15",
		AssignedTo:  "Quality Team",
	})
	s.AddCAPA(CAPADetail{
		ID:          "CAPA2024002",
		Title:       "Enhance Manufacturing Controls",
		Status:      "In Progress",
		CreatedDate: "2024-02-10",
		DueDate:     "2024-07-10",
		AssignedTo:  "Manufacturing Team",
	})

	s.AddBrand(Brand{
		ID:               "BRAND001",
		Name:             "Avino",
		TherapeuticArea:  "Oncology",
		ActiveIngredient: "Avinotuzumab",
		MarketStatus:     "Approved",
		ApprovalDate:     "2023-06-15",
	})

	s.AddBatch(Batch{
		BatchNumber:     "AV2024001",
		Brand:           "Avino",
		ManufactureDate: "2024-01-10",
		ExpiryDate:      "2026-01-10",
		Quantity:        "1000 units",
		Status:          "Released",
	})
	s.AddBatch(Batch{
		BatchNumber:     "AV2024002",
		Brand:           "Avino",
		ManufactureDate: "2024-02-05",
		ExpiryDate:      "2026-02-05",
		Quantity:        "1500 units",
		Status:          "Released",
	})
	s.AddBatch(Batch{
		BatchNumber:     "AV2024003",
		Brand:           "Avino",
		ManufactureDate: "2024-03-01",
		ExpiryDate:      "2026-03-01",
		Quantity:        "2000 units",
		Status:          "Quarantine",
	})
}
