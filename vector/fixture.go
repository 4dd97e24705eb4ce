package vector

import "context"

type fixtureDoc struct {
	content  string
	metadata map[string]any
}

// clinicalCorpus mirrors the document chunks held by the production vector
// database for the Avino brand.
var clinicalCorpus = []fixtureDoc{
	{
		content: "Avino Clinical Trial Phase III Results: The randomized controlled trial evaluated the efficacy and safety " +
			"of Avinotuzumab in 500 patients with advanced oncological conditions. Primary endpoint showed 68% overall " +
			"response rate with median progression-free survival of 12.4 months. Common adverse events included fatigue " +
			"(45%), nausea (32%), and mild infusion reactions (18%). The study demonstrated significant improvement over " +
			"standard therapy with manageable toxicity profile.",
		metadata: map[string]any{
			"source":        "https://documents.company.com/investigations/INV001.pdf",
			"page":          1,
			"document_type": "clinical_trial",
			"brand":         "Avino",
			"trial_phase":   "Phase III",
			"created_date":  "2024-01-15",
		},
	},
	{
		content: "Avino Safety Profile Analysis: Long-term safety data from 1,200 patients treated with Avinotuzumab over " +
			"24 months follow-up period. Serious adverse events occurred in 12% of patients, with most being reversible " +
			"upon treatment discontinuation. Hepatotoxicity was observed in 3% of patients, requiring regular liver " +
			"function monitoring. Overall safety profile supports continued clinical development with appropriate risk " +
			"mitigation strategies.",
		metadata: map[string]any{
			"source":        "https://documents.company.com/investigations/INV002.pdf",
			"page":          3,
			"document_type": "safety_report",
			"brand":         "Avino",
			"study_type":    "Safety Analysis",
			"created_date":  "2024-02-10",
		},
	},
	{
		content: "Avino Manufacturing Quality Control: Comprehensive analysis of batch consistency and quality parameters " +
			"for Avinotuzumab production. All 24 commercial batches met release specifications with consistent potency " +
			"(98-102% of target), purity (>99%), and stability profiles. Manufacturing process demonstrates robust control " +
			"with minimal batch-to-batch variation. Quality control testing includes identity, strength, purity, and " +
			"sterility assessments.",
		metadata: map[string]any{
			"source":        "https://documents.company.com/investigations/INV003.pdf",
			"page":          2,
			"document_type": "quality_report",
			"brand":         "Avino",
			"report_type":   "Manufacturing QC",
			"created_date":  "2024-03-05",
		},
	},
	{
		content: "Avino Pharmacokinetic Study Results: Population pharmacokinetic analysis in 300 patients showed linear " +
			"kinetics with dose-proportional exposure. Mean half-life of 14.2 days supports once-weekly dosing regimen. " +
			"No significant drug-drug interactions identified with common co-medications. Renal impairment patients showed " +
			"15% higher exposure, requiring dose adjustments in severe cases. Pharmacokinetic profile supports current " +
			"dosing recommendations.",
		metadata: map[string]any{
			"source":        "https://documents.company.com/clinical/PK_study_2024.pdf",
			"page":          5,
			"document_type": "pharmacokinetic_study",
			"brand":         "Avino",
			"study_type":    "Population PK",
			"created_date":  "2024-04-20",
		},
	},
}

// SeedClinicalCorpus indexes the development document set.
func SeedClinicalCorpus(ctx context.Context, idx *Index) error {
	for _, doc := range clinicalCorpus {
		if _, err := idx.Add(ctx, doc.content, doc.metadata); err != nil {
			return err
		}
	}
	return nil
}
