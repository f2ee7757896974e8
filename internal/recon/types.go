// Package recon implements the site reconnaissance pipeline: it turns scraped
// page metadata into a risk verdict by prompting an external classifier,
// strictly validating its answer, and persisting an audit record of the scan.
package recon

// Degree is the three-valued risk verdict assigned to a scanned site.
type Degree string

const (
	// DegreeSafe indicates no phishing or security threat indicators were found
	DegreeSafe Degree = "safe"
	// DegreeCaution indicates atypical domain composition or structures that could be abused
	DegreeCaution Degree = "caution"
	// DegreeDanger indicates clear attack intent such as brand impersonation or credential harvesting
	DegreeDanger Degree = "danger"
)

// ParseDegree returns the Degree for s, or ErrUnknownDegree when s is not one
// of the three verdict literals. No normalization is applied; the classifier
// contract requires the exact lowercase literals.
func ParseDegree(s string) (Degree, error) {
	switch Degree(s) {
	case DegreeSafe, DegreeCaution, DegreeDanger:
		return Degree(s), nil
	default:
		return "", ErrUnknownDegree
	}
}

// SiteMetadata is the scraped page metadata under analysis. All three fields
// are untrusted free text and may be empty, but must be present on the wire.
type SiteMetadata struct {
	// Title is the page title as scraped
	Title string `json:"title"`
	// URL is the address the metadata was scraped from
	URL string `json:"url"`
	// Description is the page description as scraped
	Description string `json:"description"`
}

// Request is one normalized pipeline invocation. It lives only for the
// duration of a single SiteRecon call and is never persisted as-is.
type Request struct {
	// WebData is the metadata to classify
	WebData SiteMetadata
	// UserID optionally links the scan to a requesting user; it is resolved
	// best-effort and dropped when it does not match a known user
	UserID string
	// ClientIP is the requester address captured by the transport layer
	ClientIP string
}

// Result is the validated classifier verdict returned to the caller.
type Result struct {
	// Degree is the risk verdict
	Degree Degree `json:"degree"`
	// Reason is the human-readable justification for the verdict
	Reason string `json:"reason"`
}
