// Package detectors implements the geometry-based visual/layout defect
// detectors of spec §4.6 and the analyzer that runs them (§4.6.7). Each
// detector is split into a driver-side script (kept as a Go string
// constant in the detector's own file, per spec §9's "driver-side scripts
// as opaque jobs") and a pure Go computation over the script's decoded result, so
// the computation itself is testable without a browser.
package detectors

import (
	"context"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/browserdriver"
)

// Detector computes issues from a prepared page. Detectors are pure
// transformations over page-evaluated data: they may run in any order
// and must not mutate the page (spec §4.6).
type Detector interface {
	Name() string
	Detect(ctx context.Context, page browserdriver.Page) ([]auditmodel.Issue, error)
}

// TestMode disables the header-overlap sweep, matching spec §6's
// "NODE_ENV=test disables ... the header-overlap sweep".
var TestMode bool
