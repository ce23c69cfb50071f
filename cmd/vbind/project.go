package main

import (
	"bytes"
	"context"

	"github.com/vango-dev/vbind"
	verrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/internal/source"
	"github.com/vango-dev/vbind/pkg/compiler"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/metrics"
)

// rootID is the id attribute of the element wrapping the template.
const rootID = "vbind-root"

// project holds the raw template and data so that every instance gets its
// own tree and model.
type project struct {
	a        *app
	template []byte
	data     []byte
	methods  map[string]vbind.Method
}

// loadProject reads the configured template and data.
func (a *app) loadProject(ctx context.Context) (*project, error) {
	tmpl, err := a.loader.Read(ctx, a.cfg.Template)
	if err != nil {
		return nil, err
	}
	var data []byte
	if a.cfg.Data != "" {
		if data, err = a.loader.Read(ctx, a.cfg.Data); err != nil {
			return nil, err
		}
	}
	return &project{
		a:        a,
		template: tmpl,
		data:     data,
		methods:  buildMethods(a.cfg.Methods),
	}, nil
}

// instance parses and compiles a fresh copy of the project. The template
// is mounted under a <div id="vbind-root"> so that every bound node has an
// element parent.
func (p *project) instance(surface compiler.Surface, collector *metrics.Collector) (*vbind.Instance, error) {
	frag, err := dom.Parse(bytes.NewReader(p.template))
	if err != nil {
		return nil, verrors.New("E040").WithSource(p.a.cfg.Template).Wrap(err)
	}
	root := dom.NewElement("div", []dom.Attr{dom.A("id", rootID)})
	root.AppendFragment(frag)

	model, err := source.DecodeModel(p.data)
	if err != nil {
		return nil, verrors.FromError(err, "E081").WithSource(p.a.cfg.Data)
	}

	return vbind.New(vbind.Options{
		El:              root,
		Data:            model,
		Methods:         p.methods,
		Surface:         surface,
		Logger:          p.a.logger,
		Metrics:         collector,
		MaxCascadeDepth: p.a.cfg.Reactive.MaxCascadeDepth,
	})
}
