package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/repeater-controller/internal/logic"
	"github.com/sweeney/repeater-controller/internal/status"
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
	"instant": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02 15:04:05 UTC")
	},
	"onOff": func(b bool) string {
		if b {
			return "YES"
		}
		return "no"
	},
	"stateClass": func(s logic.State) string {
		switch s {
		case logic.StateActive:
			return "active"
		case logic.StateWaking:
			return "waking"
		default:
			return "sleeping"
		}
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Repeater Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: green; font-weight: bold; }
.sleeping { color: #888; }
.waking { color: orange; }
.busy { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.warn { color: orange; font-weight: bold; }
</style>
</head>
<body>
<h1>Repeater Controller — {{.Config.FCCID}}</h1>

<table>
<tr><th>Activity state</th><td class="{{stateClass .State}}">{{.State}}</td></tr>
<tr><th>Channel busy</th><td{{if .Busy}} class="busy"{{end}}>{{onOff .Busy}}</td></tr>
<tr><th>Recording</th><td>{{onOff .Recording}}</td></tr>
{{if .SignalLost}}<tr><th>Busy signal</th><td class="warn">LOST</td></tr>{{end}}
<tr><th>Last CW ID</th><td>{{instant .LastID}}</td></tr>
<tr><th>Last repeater info</th><td>{{instant .LastInfo}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>

<table>
<tr><th>IDs played</th><td>{{.Counts.IDsPlayed}}</td></tr>
<tr><th>Info played</th><td>{{.Counts.InfosPlayed}}</td></tr>
<tr><th>Cycles skipped</th><td>{{.Counts.Skipped}}</td></tr>
<tr><th>Recordings kept</th><td>{{.Counts.RecKept}}</td></tr>
<tr><th>Recordings deleted</th><td>{{.Counts.RecDeleted}}</td></tr>
<tr><th>State changes</th><td>{{.Counts.StateChanges}}</td></tr>
</table>

<table>
<tr><th>Busy source</th><td>{{.Config.BusySource}} ({{.Config.SerialPort}})</td></tr>
<tr><th>Poll / debounce</th><td>{{.Config.PollMs}}ms / {{.Config.DebounceMs}}ms</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Template errors mean a broken build, not bad input; ignore here and
	// let the JSON endpoint remain the reliable surface.
	indexTmpl.Execute(w, snap)
}
