// Package live serves compiled vbind instances to browsers.
//
// Each page load creates a Session holding its own Instance. The page
// carries the rendered tree, with every element tagged by a data-vb node
// ID, and a small client script. The script opens a websocket, forwards
// user input and events as Frames, and applies the Patches the server
// sends back.
//
//	srv, err := live.New(live.Config{
//	    Factory: func(surface compiler.Surface) (*vbind.Instance, error) {
//	        root, _ := dom.ParseString(`<div><p>{{ n }}</p><button @click="inc">+</button></div>`)
//	        return vbind.New(vbind.Options{El: root.Children[0], Data: ..., Surface: surface})
//	    },
//	})
//	http.ListenAndServe(":8080", srv.Handler())
//
// # Wire format
//
// Client to server, one JSON object per message:
//
//	{"type": "input", "id": "n4", "value": "hello"}
//	{"type": "event", "id": "n5", "event": "click"}
//
// Server to client, one JSON array per handled frame:
//
//	[{"op": "html", "id": "n2", "value": "hello"}, {"op": "value", "id": "n4", "value": "hello"}]
//
// Events within a session are handled one at a time.
package live
