// Package errors provides coded, actionable error messages for the vbind
// command line.
//
// Library packages return plain Go errors (sentinels and typed errors that
// work with errors.Is and errors.As). Classify maps those onto a registered
// code so the CLI can print a consistent report:
//
//	if err != nil {
//	    ve := errors.Classify(err).WithSource("page.html")
//	    fmt.Fprint(os.Stderr, ve.Format())
//	}
//	// ERROR E020: Missing method
//	//
//	//   page.html
//	//
//	//   compile <button v-on:click="save">: vbind: missing event handler:
//	//   "save"
//	//
//	//   Hint: Declare the method under "methods" in vbind.yaml.
//
// # Error Codes
//
//   - E001-E019: reactive model (path resolution, tracking, cascades)
//   - E020-E039: directive binding
//   - E040-E059: template loading
//   - E060-E079: configuration
//   - E080-E099: template and data sources
//   - E100-E119: live server
package errors
