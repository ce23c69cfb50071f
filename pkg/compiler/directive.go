package compiler

import "strings"

const (
	// DirectivePrefix starts every directive attribute.
	DirectivePrefix = "v-"
	// EventShorthand starts the short form of v-on.
	EventShorthand = "@"
)

// DirectiveKind identifies the handler of a directive attribute.
type DirectiveKind uint8

const (
	KindUnknown DirectiveKind = iota // v-<anything else>, stripped and ignored
	KindText                         // v-text
	KindHTML                         // v-html
	KindModel                        // v-model
	KindOn                           // v-on:<event>, @<event>
	KindBind                         // v-bind:<attr>
)

// String returns the directive name.
func (k DirectiveKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHTML:
		return "html"
	case KindModel:
		return "model"
	case KindOn:
		return "on"
	case KindBind:
		return "bind"
	default:
		return "unknown"
	}
}

// Directive is a parsed directive attribute name.
type Directive struct {
	Kind DirectiveKind
	// Name is the attribute name as written.
	Name string
	// Arg is the event name for KindOn and the attribute name for KindBind.
	Arg string
}

// ParseDirective parses an attribute name. ok is false when the attribute
// is not a directive at all.
func ParseDirective(attr string) (d Directive, ok bool) {
	d.Name = attr

	if event, found := strings.CutPrefix(attr, EventShorthand); found {
		if event != "" {
			d.Kind = KindOn
			d.Arg = event
		}
		return d, true
	}

	rest, found := strings.CutPrefix(attr, DirectivePrefix)
	if !found {
		return d, false
	}
	kind, arg, _ := strings.Cut(rest, ":")
	switch kind {
	case "text":
		d.Kind = KindText
	case "html":
		d.Kind = KindHTML
	case "model":
		d.Kind = KindModel
	case "on":
		if arg != "" {
			d.Kind = KindOn
			d.Arg = arg
		}
	case "bind":
		if arg != "" {
			d.Kind = KindBind
			d.Arg = arg
		}
	}
	return d, true
}
