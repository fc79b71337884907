package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/plant-monitor/internal/plant"
	"github.com/sweeney/plant-monitor/internal/status"
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
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"condClass": func(c plant.Condition) string {
		switch c {
		case plant.SoilWet, plant.WateringCompleted:
			return "ok"
		case plant.SoilDry:
			return "warn"
		case plant.NeedsWatering, plant.TempTooHigh, plant.TempTooLow:
			return "alert"
		case plant.ConditionError:
			return "err"
		}
		return "unknown"
	},
	"meas": func(m plant.Measurement, format string) string {
		if !m.Valid {
			return "ERR"
		}
		return fmt.Sprintf(format, m.Value)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Plant Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.warn { color: #b8860b; font-weight: bold; }
.alert { color: red; font-weight: bold; }
.err { color: red; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Plant Monitor — {{.Profile.PlantName}}</h1>

<h2>State</h2>
<table>
<tr><th>Condition</th><td class="{{condClass .Condition}}">{{orUnknown (printf "%s" .Condition)}}</td></tr>
<tr><th>Growth Phase</th><td>{{orUnknown (printf "%s" .Phase)}}</td></tr>
</table>

<h2>Latest Sample</h2>
{{if .HasSample}}
<table>
<tr><th>Time</th><td>{{.Latest.Timestamp.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Temperature</th><td>{{meas .Latest.Temperature "%.1f °C"}}</td></tr>
<tr><th>Humidity</th><td>{{meas .Latest.Humidity "%.1f %%"}}</td></tr>
<tr><th>Light</th><td>{{meas .Latest.Lux "%.0f lux"}}</td></tr>
<tr><th>Soil Moisture</th><td>{{meas .Latest.SoilMoisture "%.0f mV"}}</td></tr>
</table>
{{else}}
<p>No samples yet.</p>
{{end}}

<h2>Profile</h2>
<table>
<tr><th>Soil Dry Threshold</th><td>{{printf "%.0f" .Profile.SoilDryThreshold}} mV</td></tr>
<tr><th>Soil Wet Threshold</th><td>{{printf "%.0f" .Profile.SoilWetThreshold}} mV</td></tr>
<tr><th>Dry Days For Watering</th><td>{{.Profile.SoilDryDaysForWatering}}</td></tr>
<tr><th>Temp High Limit</th><td>{{printf "%.1f" .Profile.TempHighLimit}} °C</td></tr>
<tr><th>Temp Low Limit</th><td>{{printf "%.1f" .Profile.TempLowLimit}} °C</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} / {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Condition Counts</h2>
<table>
<tr><th>Soil Dry</th><td>{{.Counts.Dry}}</td></tr>
<tr><th>Soil Wet</th><td>{{.Counts.Wet}}</td></tr>
<tr><th>Needs Watering</th><td>{{.Counts.NeedsWatering}}</td></tr>
<tr><th>Watering Completed</th><td>{{.Counts.WateringCompleted}}</td></tr>
<tr><th>Temp Too High</th><td>{{.Counts.TempHigh}}</td></tr>
<tr><th>Temp Too Low</th><td>{{.Counts.TempLow}}</td></tr>
<tr><th>Errors</th><td>{{.Counts.Errors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Classify</th><td>{{.Config.ClassifyMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/history.json">History</a> · <a href="/samples.json">Samples</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
