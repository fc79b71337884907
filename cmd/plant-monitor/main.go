// Command plant-monitor samples a potted plant's environment and publishes
// its condition to MQTT, with an RGB indicator and an HTTP status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/plant-monitor/internal/led"
	"github.com/sweeney/plant-monitor/internal/mqtt"
	"github.com/sweeney/plant-monitor/internal/plant"
	"github.com/sweeney/plant-monitor/internal/profile"
	"github.com/sweeney/plant-monitor/internal/sensors"
	"github.com/sweeney/plant-monitor/internal/status"
	"github.com/sweeney/plant-monitor/internal/web"
)

// evictEvery is how many analysis passes run between history evictions.
const evictEvery = 10

func main() {
	poll := flag.Duration("poll", time.Minute, "Sensor sampling interval")
	classify := flag.Duration("classify", 10*time.Minute, "Condition analysis interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	profileDir := flag.String("profile-dir", "/var/lib/plant-monitor", "Directory for the stored plant profile")
	pinRed := flag.Int("pin-red", led.DefaultPinRed, "BCM pin number for the red LED channel")
	pinGreen := flag.Int("pin-green", led.DefaultPinGreen, "BCM pin number for the green LED channel")
	pinBlue := flag.Int("pin-blue", led.DefaultPinBlue, "BCM pin number for the blue LED channel")
	printState := flag.Bool("print-state", false, "Read the sensors once, print the values and exit")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")

	flag.Parse()

	if err := run(*poll, *classify, *heartbeat, *broker, *profileDir, *httpAddr,
		*pinRed, *pinGreen, *pinBlue, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(poll, classify, heartbeat time.Duration, broker, profileDir, httpAddr string,
	pinRed, pinGreen, pinBlue int, printState bool) error {
	reader := sensors.NewRealReader()
	defer reader.Close()

	// Print state mode
	if printState {
		printReadings(reader.Read())
		return nil
	}

	// Load the stored profile (falls back to defaults, never fails)
	store := profile.NewStore(profileDir)
	prof := store.Load()
	log.Printf("profile: %s (dry=%.0fmV wet=%.0fmV dry-days=%d temp=%.1f..%.1f)",
		prof.PlantName, prof.SoilDryThreshold, prof.SoilWetThreshold,
		prof.SoilDryDaysForWatering, prof.TempLowLimit, prof.TempHighLimit)

	monitor := plant.NewMonitor(prof)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), prof, status.Config{
		PollMs:      poll.Milliseconds(),
		ClassifyMs:  classify.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
		ProfileDir:  profileDir,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Initialize the indicator LED
	indicator, err := led.NewRealDriver(pinRed, pinGreen, pinBlue)
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer indicator.Close()

	// Initialize MQTT with the command topic wired to the monitor
	publisher, err := mqtt.NewRealPublisher(broker, commandHandler(monitor, store, tracker))
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, monitor)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: poll=%v classify=%v broker=%s heartbeat=%v", poll, classify, broker, heartbeat)

	sampleTicker := time.NewTicker(poll)
	defer sampleTicker.Stop()
	classifyTicker := time.NewTicker(classify)
	defer classifyTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reader, publisher, publisher, tracker, indicator, monitor,
		heartbeat, time.Now, sampleTicker.C, classifyTicker.C, sigCh)
}

// commandHandler answers the MQTT command topic: history and sample queries,
// plus profile read/replace. A replaced profile is validated by the monitor
// and persisted before the response goes out.
func commandHandler(monitor *plant.Monitor, store *profile.Store, tracker *status.Tracker) mqtt.CommandHandler {
	return func(cmd mqtt.Command) ([]byte, error) {
		switch cmd.Cmd {
		case mqtt.CmdHistory:
			days := cmd.Days
			if days == 0 {
				days = 7
			}
			if days < 1 {
				return nil, fmt.Errorf("bad days %d", cmd.Days)
			}
			return mqtt.FormatHistoryResponse(monitor.RecentDailySummaries(days))

		case mqtt.CmdSamples:
			hours := cmd.Hours
			if hours == 0 {
				hours = 1
			}
			if hours < 1 || hours > 24 {
				return nil, fmt.Errorf("bad hours %d", cmd.Hours)
			}
			return mqtt.FormatSamplesResponse(monitor.RecentSamples(hours * 60))

		case mqtt.CmdGetProfile:
			return mqtt.FormatProfileResponse(monitor.Profile())

		case mqtt.CmdSetProfile:
			if cmd.Profile == nil {
				return nil, fmt.Errorf("set_profile without profile")
			}
			p := cmd.Profile.ToProfile()
			if err := monitor.SetProfile(p); err != nil {
				return nil, err
			}
			if err := store.Save(p); err != nil {
				log.Printf("profile save error: %v", err)
				return nil, fmt.Errorf("save profile: %w", err)
			}
			tracker.SetProfile(p)
			log.Printf("profile replaced: %s", p.PlantName)
			return mqtt.FormatProfileResponse(p)
		}
		return nil, fmt.Errorf("unknown command %q", cmd.Cmd)
	}
}

func runLoop(reader sensors.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus,
	tracker *status.Tracker, indicator led.Driver, monitor *plant.Monitor,
	heartbeat time.Duration, now func() time.Time,
	sampleTick, classifyTick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	lastHeartbeat := startTime
	classifyCount := 0

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			if indicator != nil {
				indicator.Set(led.ColorOff)
			}
			return nil

		case <-sampleTick:
			t := now()
			readings := reader.Read()
			logReadErrors(readings)

			sample := buildSample(t, readings)
			if err := monitor.Ingest(sample); err != nil {
				log.Printf("ingest error: %v", err)
				continue
			}

			if err := publisher.PublishReading(sample); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
			if tracker != nil {
				tracker.SetLatest(sample)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				log.Printf("heartbeat: uptime=%v history=%d samples", t.Sub(startTime), monitor.HistoryLen())

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

		case <-classifyTick:
			t := now()
			previous := monitor.Condition()
			st := monitor.Classify()
			classifyCount++

			if st.Condition != previous {
				log.Printf("condition: %s -> %s (phase=%s)", previous, st.Condition, st.Phase)
				event := mqtt.ConditionEvent{
					Timestamp: t,
					Condition: st.Condition,
					Previous:  previous,
					Phase:     st.Phase,
				}
				if err := publisher.PublishCondition(event); err != nil {
					log.Printf("publish error: %v", err)
				}
			}

			if indicator != nil {
				if err := indicator.Set(led.ColorFor(st.Condition)); err != nil {
					log.Printf("led error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(st, monitor.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if classifyCount%evictEvery == 0 {
				minutes, days := monitor.EvictOld(t)
				if minutes > 0 || days > 0 {
					log.Printf("evicted %d samples, %d day summaries", minutes, days)
				}
				log.Printf("analysis: condition=%s phase=%s history=%d samples",
					st.Condition, st.Phase, monitor.HistoryLen())
			}
		}
	}
}

// buildSample converts one sensor poll into an immutable sample. Each
// errored channel becomes an invalid measurement, not a dropped sample.
func buildSample(t time.Time, r sensors.Readings) plant.Sample {
	conv := func(in sensors.Reading) plant.Measurement {
		if in.Err != nil {
			return plant.Measurement{}
		}
		return plant.Measurement{Value: in.Value, Valid: true}
	}
	return plant.Sample{
		Timestamp:    t,
		Temperature:  conv(r.Temperature),
		Humidity:     conv(r.Humidity),
		Lux:          conv(r.Lux),
		SoilMoisture: conv(r.SoilMoisture),
	}
}

func logReadErrors(r sensors.Readings) {
	for _, f := range []struct {
		name string
		r    sensors.Reading
	}{
		{"temperature", r.Temperature},
		{"humidity", r.Humidity},
		{"lux", r.Lux},
		{"soil moisture", r.SoilMoisture},
	} {
		if f.r.Err != nil {
			log.Printf("%s read error: %v", f.name, f.r.Err)
		}
	}
}

func printReadings(r sensors.Readings) {
	show := func(in sensors.Reading, format string) string {
		if in.Err != nil {
			return fmt.Sprintf("ERR (%v)", in.Err)
		}
		return fmt.Sprintf(format, in.Value)
	}
	fmt.Printf("temperature:   %s\n", show(r.Temperature, "%.1f °C"))
	fmt.Printf("humidity:      %s\n", show(r.Humidity, "%.1f %%"))
	fmt.Printf("light:         %s\n", show(r.Lux, "%.0f lux"))
	fmt.Printf("soil moisture: %s\n", show(r.SoilMoisture, "%.0f mV"))
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
