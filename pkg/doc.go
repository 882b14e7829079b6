// Package pkg holds the reqtrace libraries.
//
// Requirement text flows through the packages in this order:
//
//	classify   sentences tagged performance/stability/safety/verification
//	detect     system profile (type name and id code) from keywords
//	trace      the layered traceability DAG (package dag)
//	layout     normalized node coordinates
//	render     dot, svg, png, pdf, raster and json artifacts
//
// [pipeline] runs that chain with caching; [artifacts] generates design
// and verification documents through [llm] using the templates in
// [prompts]. [schema] and [pdftext] supply database and document context.
// [config], [cache], [observability] and [errors] are shared infrastructure.
package pkg
