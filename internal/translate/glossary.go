package translate

import "strings"

// glossaryTerms must survive translation byte-identical: compound product
// identifiers, units of measure, currency codes, and the lab/compliance
// vocabulary the research audience expects untouched in any language.
var glossaryTerms = []string{
	// Brand
	"BioCycle Peptides",
	// Peptide and compound identifiers
	"BPC-157", "TB-500", "CJC-1295", "CJC-1295 DAC", "GHRP-2", "GHRP-6",
	"GHK-Cu", "AOD-9604", "LL-37", "KPV", "PT-141", "NAD+", "MOTS-c",
	"Epithalon", "Semax", "Selank", "NA-Semax", "NA-Selank", "DSIP",
	"Ipamorelin", "Tesamorelin", "Sermorelin", "Hexarelin", "Melanotan II",
	"Thymosin Alpha-1", "Thymosin Beta-4", "IGF-1 LR3", "Follistatin-344",
	"GLP-1", "Semaglutide", "Tirzepatide", "Retatrutide", "Cagrilintide",
	"Kisspeptin-10", "Gonadorelin", "Triptorelin", "Oxytocin", "ARA-290",
	"PE-22-28", "SS-31", "Humanin", "FOXO4-DRI", "5-Amino-1MQ", "VIP",
	// Units of measure
	"mg", "mcg", "mL", "IU", "kDa", "nmol", "°C",
	// Currency codes
	"CAD", "USD", "EUR",
	// Lab and compliance markers
	"HPLC", "COA", "GMP", "ISO 9001", "USP", "MS", "BAC",
}

// Glossary returns the comma-separated preserve-verbatim list embedded in
// every system prompt.
func Glossary() string {
	return strings.Join(glossaryTerms, ", ")
}
