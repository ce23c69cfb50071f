// Package dom is the render surface vbind compiles into: a small mutable
// element tree with attributes, form values and event listeners.
//
// Trees are usually parsed from HTML:
//
//	root, err := dom.ParseString(`<p>{{ greeting }}</p><input v-model="name">`)
//
// and written back out with Render or (*Node).OuterHTML. Updater adapts the
// tree to the compiler's render-surface operations and can stream every
// change as a Patch, which is how live sessions mirror the tree into a
// browser.
package dom
