package live

import (
	_ "embed"
	"encoding/json"
	"html"
	"io"
)

//go:embed client.js
var clientScript string

// bootstrap is the state handed to the client script.
type bootstrap struct {
	Session   string              `json:"session"`
	Listeners map[string][]string `json:"listeners"`
}

// writePage writes the HTML document for session.
func writePage(w io.Writer, title string, session *Session) error {
	boot, err := json.Marshal(bootstrap{
		Session:   session.ID,
		Listeners: session.Listeners(),
	})
	if err != nil {
		return err
	}

	pw := &pageWriter{w: w}
	pw.write("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	pw.write(html.EscapeString(title))
	pw.write("</title></head><body>\n")
	if pw.err == nil {
		pw.err = session.Render(w)
	}
	pw.write("\n<script>window.__vbind = ")
	pw.write(string(boot))
	pw.write(";</script>\n<script>")
	pw.write(clientScript)
	pw.write("</script>\n</body></html>\n")
	return pw.err
}

// pageWriter keeps the first write error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}
