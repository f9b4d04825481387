// Where: cli/internal/domain/matrix/manifest_trim.go
// What: Maintenance pass applying the trimmer to a whole manifest.
// Why: Keep list and mapping products bounded with one call per run.
package matrix

import "sort"

// TrimOptions selects what a manifest trim touches.
// Floor applies to list-shaped products only.
type TrimOptions struct {
	Products []string
	Floor    string
	Keep     int
}

// ProductTrim describes the outcome for one product.
type ProductTrim struct {
	Product  string
	Kind     EntryKind
	Removed  []string
	Injected bool
}

// TrimReport lists per-product outcomes in product order.
type TrimReport struct {
	Products []ProductTrim
}

// Changed reports whether any product lost or gained an entry.
func (r TrimReport) Changed() bool {
	for _, p := range r.Products {
		if len(p.Removed) > 0 || p.Injected {
			return true
		}
	}
	return false
}

// TrimManifest trims the selected products in place. Products that are
// missing or opaque are skipped silently. The baseline pairing of a mapping
// product is never touched.
func TrimManifest(m *Manifest, opts TrimOptions) TrimReport {
	report := TrimReport{}
	if m == nil || m.SupportedImages == nil {
		return report
	}

	products := append([]string{}, opts.Products...)
	sort.Strings(products)
	for _, name := range products {
		entry, ok := m.SupportedImages[name]
		if !ok {
			continue
		}
		switch entry.Kind {
		case KindVersionList:
			before := entry.Versions
			after := TrimVersionList(before, opts.Floor, opts.Keep)
			entry.Versions = after
			report.Products = append(report.Products, ProductTrim{
				Product:  name,
				Kind:     entry.Kind,
				Removed:  Removed(before, after),
				Injected: opts.Floor != "" && !contains(before, opts.Floor),
			})
		case KindOpsManagerMapping:
			before := entry.Mapping.Versions()
			entry.Mapping.OpsManager = TrimMapping(entry.Mapping.OpsManager, opts.Keep)
			report.Products = append(report.Products, ProductTrim{
				Product: name,
				Kind:    entry.Kind,
				Removed: Removed(before, entry.Mapping.Versions()),
			})
		default:
			continue
		}
		m.SupportedImages[name] = entry
	}
	return report
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
