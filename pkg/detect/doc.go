// Package detect picks a system profile for free-form requirement text.
//
// A [Profile] pairs a human-readable system type with a short identifier code
// ("AV", "EMS", ...). The code prefixes backbone labels in the traceability
// graph and selects the color palette used to render it.
//
// Detection scans an ordered keyword table once; the first keyword contained
// in the lower-cased text wins. Text matching nothing yields [Generic].
//
//	p := detect.DetectSystemType("The self-driving shuttle must brake safely.")
//	fmt.Println(p.IDCode) // AV
package detect
