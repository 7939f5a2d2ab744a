package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/relay-control/internal/relay"
	"github.com/sweeney/relay-control/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"seconds": func(d time.Duration) string {
		return fmt.Sprintf("%gs", d.Seconds())
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Relay Control</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
button { font-family: monospace; padding: 2px 12px; }
button:disabled { color: #aaa; }
#msg { min-height: 1.2em; color: #b00; }
</style>
</head>
<body>
<h1>Relay Control</h1>

<p id="msg"></p>

<h2>Relays</h2>
<table>
<tr><th>Relay</th><th>Name</th><th>Line</th><th>State</th><th>Last Source</th><th></th></tr>
{{range .Relays}}<tr>
<td>{{.Relay}}</td>
<td>{{.Name}}</td>
<td>{{.Line}}</td>
<td class="{{if .On}}on{{else}}off{{end}}">{{if .On}}ON{{else}}OFF{{end}}</td>
<td>{{.LastSource}}</td>
<td><button onclick="trigger({{.Relay}})" {{if .Locked}}disabled{{end}}>Trigger ({{seconds .Duration}})</button></td>
</tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Active triggers</th><td>{{.Snap.Active}} / {{.Snap.Config.MaxConcurrent}}</td></tr>
<tr><th>Triggered</th><td>{{.Snap.Counts.Triggered}}</td></tr>
<tr><th>Rejected</th><td>{{.Snap.Counts.Rejected}}</td></tr>
<tr><th>Faults</th><td>{{.Snap.Counts.Faults}}</td></tr>
<tr><th>MQTT</th><td class="{{if .Snap.MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .Snap.MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.Snap.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/status">JSON</a></p>

<script>
function trigger(id) {
  var msg = document.getElementById("msg");
  msg.textContent = "";
  fetch("/relay/" + id, { method: "POST" })
    .then(function(resp) { return resp.json().then(function(body) { return { ok: resp.ok, body: body }; }); })
    .then(function(r) {
      if (!r.ok) {
        msg.textContent = "relay " + id + ": " + (r.body.code || "error");
        return;
      }
      setTimeout(function() { location.reload(); }, 300);
    })
    .catch(function() { msg.textContent = "request failed"; });
}
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, relays []relay.Status) {
	data := struct {
		Snap   status.Snapshot
		Relays []relay.Status
		Uptime time.Duration
	}{
		Snap:   snap,
		Relays: relays,
		Uptime: snap.Uptime(),
	}
	// Render errors surface as a truncated page; nothing useful to do.
	_ = indexTmpl.Execute(w, data)
}
