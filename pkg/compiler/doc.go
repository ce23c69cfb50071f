// Package compiler binds a template tree to an observed model.
//
// Compile walks the tree once. Attributes named v-text, v-html, v-model,
// v-on:<event>, v-bind:<attr> and @<event> become bindings and are removed
// from the tree; other v- attributes are removed and otherwise ignored.
// Text containing {{ path }} markers is interpolated. Every live binding is
// a reactive.Watcher whose callback re-resolves its path and pushes the
// result to the Surface.
package compiler
