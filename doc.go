// Package wp2mdx converts a WordPress content export into MDX documents.
//
// # Quick Start
//
// Load an export, convert every record and write the documents:
//
//	exp, err := export.Load("content/_raw")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conv := wp2mdx.NewConverter(
//	    wp2mdx.WithBaseURL(exp.Site.BaseURL),
//	    wp2mdx.WithMediaManifest(wp2mdx.NewMediaManifest(exp.Media)),
//	)
//	out := wp2mdx.NewDirWriter("content/migrated")
//
//	report := wp2mdx.NewReport(time.Now())
//	records := exp.Records(report)
//
//	result, err := wp2mdx.NewBatch(conv).Run(ctx, records, out)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.Merge(result.Report)
//	out.WriteJSON("transform-report.json", report)
//
// # Conversion Pipeline
//
// Each record body goes through these stages:
//
//  1. Gutenberg block markers are resolved
//  2. Page-builder shortcodes are expanded into HTML, unknown ones recorded
//  3. Absolute links under the site URL are made relative
//  4. HTML is converted to Markdown and escaped for MDX
//
// The header is built from the record's structured fields, independently
// of the body stages. A record never fails because of malformed markup;
// anomalies are recorded in the Report.
//
// # Output Layout
//
//	posts/<slug>.mdx
//	pages/<slug>.mdx          (pages/<parent>/<slug>.mdx with WithNestPages)
//	<custom type>/<slug>.mdx  (stm_ prefix removed)
//
// Custom types listed in DefaultExcludedTypes produce no document.
//
// # Parallel Processing
//
// Batch runs records on ResolvePoolSize workers. Stages hold no shared
// state; every item records into its own partial Report and the partials
// are merged in input order once all workers are done, so the report of a
// run does not depend on scheduling.
package wp2mdx
