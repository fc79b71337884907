package mqtt

import (
	"github.com/sweeney/plant-monitor/internal/plant"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Readings contains all samples that were published.
	Readings []plant.Sample

	// ReadingPayloads contains the JSON payloads for readings.
	ReadingPayloads [][]byte

	// Conditions contains all condition events that were published.
	Conditions []ConditionEvent

	// ConditionPayloads contains the JSON payloads for condition events.
	ConditionPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by all Publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishReading records the sample.
func (f *FakePublisher) PublishReading(s plant.Sample) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Readings = append(f.Readings, s)

	payload, err := FormatReadingPayload(s)
	if err != nil {
		return err
	}
	f.ReadingPayloads = append(f.ReadingPayloads, payload)

	return nil
}

// PublishCondition records the condition event.
func (f *FakePublisher) PublishCondition(e ConditionEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Conditions = append(f.Conditions, e)

	payload, err := FormatConditionPayload(e)
	if err != nil {
		return err
	}
	f.ConditionPayloads = append(f.ConditionPayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.Readings = nil
	f.ReadingPayloads = nil
	f.Conditions = nil
	f.ConditionPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}
