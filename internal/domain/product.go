package domain

// Product enumerates the products tickets can be filed against.
type Product string

const (
	ProductRxScan      Product = "RxScan"
	ProductMedscribe   Product = "Medscribe"
	ProductLegalyze    Product = "Legalyze"
	ProductDICOMViewer Product = "DICOM Viewer"
	ProductBreastCA    Product = "Breast Cancer Detection"
	ProductOther       Product = "Other"

	// ProductAll is valid for licenses only, never for tickets.
	ProductAll Product = "All Products"
)

// ValidTicketProduct reports whether a ticket may be filed against p.
func ValidTicketProduct(p Product) bool {
	switch p {
	case ProductRxScan, ProductMedscribe, ProductLegalyze, ProductDICOMViewer, ProductBreastCA, ProductOther:
		return true
	}
	return false
}

// ValidLicenseProduct reports whether a license may be issued for p.
func ValidLicenseProduct(p Product) bool {
	if p == ProductAll {
		return true
	}
	return ValidTicketProduct(p) && p != ProductOther
}
