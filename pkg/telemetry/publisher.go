// Package telemetry publishes device state and the command log to an MQTT
// broker. It is observability only and never routes commands.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/serialproto/pkg/device"
	"github.com/robotalks/serialproto/pkg/msgs"
	tmsgs "github.com/robotalks/serialproto/pkg/telemetry/msgs"
)

// DefaultStatusInterval is the period of unconditional status updates.
const DefaultStatusInterval = 5 * time.Second

const recordQueueLen = 64

// Broker is the part of Queue used by Publisher.
type Broker interface {
	Connect() paho.Token
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
	Close() error
}

// Publisher implements device.Observer and publishes telemetry of a
// Device under <prefix><DeviceID>/.
type Publisher struct {
	Broker   Broker
	DeviceID string
	Meta     tmsgs.Meta
	Device   *device.Device
	Interval time.Duration

	once    sync.Once
	records chan record
}

type record struct {
	kind string
	msg  proto.Message
}

// NewPublisher creates a Publisher connected through a Queue to brokerURL.
// The retained meta is cleared by the broker if the publisher vanishes.
func NewPublisher(brokerURL, deviceID string, dev *device.Device, meta tmsgs.Meta) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+deviceID+"/"+tmsgs.TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("serialproto:" + deviceID)
	}
	q := NewQueue(opts, topicPrefix)
	p := &Publisher{
		Broker:   q,
		DeviceID: deviceID,
		Meta:     meta,
		Device:   dev,
	}
	q.OnConnect = func(*Queue) { p.Announce() }
	return p, nil
}

// Announce publishes the retained meta.
func (p *Publisher) Announce() {
	data, err := json.Marshal(&p.Meta)
	if err != nil {
		glog.Errorf("telemetry: encode meta: %v", err)
		return
	}
	p.Broker.PubWith(p.topic(tmsgs.TopicMeta), data, 1, true)
}

// Exchanged implements device.Observer.
func (p *Publisher) Exchanged(cmd msgs.Command, resp msgs.Response) {
	p.post(tmsgs.TopicExchange, &tmsgs.ExchangeRecord{
		Timestamp: time.Now().UnixNano(),
		Command:   fmt.Sprint(cmd),
		Response:  fmt.Sprint(resp),
		Ok:        msgs.IsOK(resp),
	})
}

// Fired implements device.Observer.
func (p *Publisher) Fired(fns []msgs.Function) {
	rec := &tmsgs.FiredRecord{Timestamp: time.Now().UnixNano()}
	for _, fn := range fns {
		rec.Functions = append(rec.Functions, fmt.Sprint(fn))
	}
	p.post(tmsgs.TopicFired, rec)
}

// Run implements Runnable. A status follows every record, and is also
// published every Interval.
func (p *Publisher) Run(ctx context.Context) error {
	connected := p.connect()
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	records := p.recordCh()
	p.publishStatus()
	for {
		select {
		case <-ctx.Done():
			p.Broker.PubWith(p.topic(tmsgs.TopicMeta), nil, 1, true).WaitTimeout(time.Second)
			p.Broker.Close()
			return nil
		case rec := <-records:
			p.publish(rec.kind, rec.msg)
			p.publishStatus()
		case <-ticker.C:
			if !connected {
				connected = p.connect()
			}
			p.publishStatus()
		}
	}
}

func (p *Publisher) connect() bool {
	token := p.Broker.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		glog.Warningf("telemetry: connect: %v", err)
		return false
	}
	return true
}

func (p *Publisher) recordCh() chan record {
	p.once.Do(func() { p.records = make(chan record, recordQueueLen) })
	return p.records
}

func (p *Publisher) post(kind string, msg proto.Message) {
	select {
	case p.recordCh() <- record{kind: kind, msg: msg}:
	default:
		glog.V(1).Infof("telemetry: %s record dropped", kind)
	}
}

func (p *Publisher) publish(kind string, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		glog.Errorf("telemetry: encode %s: %v", kind, err)
		return
	}
	p.Broker.PubWith(p.topic(kind), data, 0, false)
}

func (p *Publisher) publishStatus() {
	if p.Device == nil {
		return
	}
	p.publish(tmsgs.TopicStatus, StatusOf(p.DeviceID, p.Device.Snapshot(), p.Device.Stats.Snapshot(), time.Now()))
}

func (p *Publisher) topic(kind string) string {
	return p.DeviceID + "/" + kind
}

// StatusOf builds the status message from a device state snapshot.
func StatusOf(deviceID string, st device.State, stats device.StatsSnapshot, now time.Time) *tmsgs.DeviceStatus {
	status := &tmsgs.DeviceStatus{
		DeviceId:         deviceID,
		Timestamp:        now.UnixNano(),
		Counter:          st.Counter,
		BlinkIntervalMs:  st.BlinkIntervalMs,
		RgbEnabled:       st.RGBEnabled,
		CommandsReceived: stats.CommandsReceived,
		FramesRejected:   stats.FramesRejected,
		CommandsDropped:  stats.CommandsDropped,
		ResponsesSent:    stats.ResponsesSent,
		TxErrors:         stats.TxErrors,
	}
	if st.ReferenceTime != nil {
		status.ReferenceTime = st.ReferenceTime.String()
	}
	for _, entry := range st.Schedule {
		status.Schedule = append(status.Schedule, fmt.Sprintf("%v @ %s", entry.Function, entry.At))
	}
	return status
}
