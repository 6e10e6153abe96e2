// Package records provides test infrastructure for provider statement payloads.
// It builds raw records in each provider's own field layout so tests exercise
// the same normalization path as live API responses.
//
// # Basic Usage
//
//	raw := records.NewBuilder(t, model.ProviderCorpX).
//		Credit(100, documentA).
//		Debit(0.50, decoyDocument).
//		Credit(50, documentB).
//		Build()
//
// # Fixtures
//
// Fixtures describe reusable statement scenarios:
//
//	raw := records.FixtureDecoy.Records(t, model.ProviderTCR)
//
// # Paging
//
// Split cuts a record list into provider-sized pages for fetch loop tests:
//
//	pages := records.Split(raw, 80, 20)
package records
