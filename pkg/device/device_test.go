package device_test

import (
	"context"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialproto/pkg/device"
	"github.com/robotalks/serialproto/pkg/host"
	"github.com/robotalks/serialproto/pkg/msgs"
	"github.com/robotalks/serialproto/pkg/wire"
)

// pipePort adapts net.Conn to link.Port.
type pipePort struct {
	net.Conn
	timeout time.Duration
}

func (p *pipePort) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return nil
}

func (p *pipePort) Read(b []byte) (int, error) {
	var deadline time.Time
	if p.timeout > 0 {
		deadline = time.Now().Add(p.timeout)
	}
	p.Conn.SetReadDeadline(deadline)
	n, err := p.Conn.Read(b)
	if os.IsTimeout(err) {
		return n, nil
	}
	return n, err
}

type recordingObserver struct {
	lock      sync.Mutex
	exchanges []msgs.Command
	fired     []msgs.Function
}

func (o *recordingObserver) Exchanged(cmd msgs.Command, _ msgs.Response) {
	o.lock.Lock()
	o.exchanges = append(o.exchanges, cmd)
	o.lock.Unlock()
}

func (o *recordingObserver) Fired(fns []msgs.Function) {
	o.lock.Lock()
	o.fired = append(o.fired, fns...)
	o.lock.Unlock()
}

func (o *recordingObserver) firedFunctions() []msgs.Function {
	o.lock.Lock()
	defer o.lock.Unlock()
	return append([]msgs.Function(nil), o.fired...)
}

type deviceTestEnv struct {
	t        *testing.T
	dev      *device.Device
	client   *host.Client
	devConn  net.Conn
	observer *recordingObserver
	cancel   func()
	done     chan error
}

func newDeviceTestEnv(t *testing.T, conf *device.Config) *deviceTestEnv {
	hostConn, devConn := net.Pipe()
	env := &deviceTestEnv{
		t:        t,
		dev:      device.New(conf, &device.LogActuator{}),
		client:   host.NewClient(&pipePort{Conn: hostConn}),
		devConn:  devConn,
		observer: &recordingObserver{},
		done:     make(chan error, 2),
	}
	env.dev.Observer = env.observer
	ctx, cancel := context.WithCancel(context.Background())
	env.cancel = cancel
	go func() { env.done <- env.dev.Run(ctx) }()
	go func() { env.done <- env.dev.Serve(ctx, devConn) }()
	t.Cleanup(env.stop)
	return env
}

func (e *deviceTestEnv) stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	e.cancel = nil
	for i := 0; i < 2; i++ {
		select {
		case err := <-e.done:
			require.NoError(e.t, err)
		case <-time.After(2 * time.Second):
			e.t.Fatal("device did not stop")
		}
	}
}

func (e *deviceTestEnv) exchange(cmd msgs.Command) msgs.Response {
	resp, err := e.client.Exchange(cmd, time.Second)
	require.NoError(e.t, err)
	return resp
}

func testConfig() *device.Config {
	conf := device.NewConfig()
	conf.TickInterval = 5 * time.Millisecond
	conf.Recover = false
	return conf
}

func TestEndToEndScenario(t *testing.T) {
	env := newDeviceTestEnv(t, testConfig())
	now := msgs.Now()
	var responses []msgs.Response
	err := env.client.RunScenario(host.BasicScenario(now), time.Second, func(_ host.Step, resp msgs.Response) {
		responses = append(responses, resp)
	})
	require.NoError(t, err)
	require.Len(t, responses, 7)

	state := env.dev.Snapshot()
	require.Equal(t, uint64(1), state.Counter)
	require.NotNil(t, state.ReferenceTime)
	require.Len(t, state.Schedule, 1)
	require.Len(t, env.observer.exchanges, 7)
}

func TestEndToEndScheduledFunctionFires(t *testing.T) {
	env := newDeviceTestEnv(t, testConfig())
	now := msgs.Now()
	require.Equal(t, msgs.OK{}, env.exchange(msgs.SetDateTime{DateTime: &now}))
	require.Equal(t, msgs.OK{}, env.exchange(msgs.Schedule{Function: msgs.Increment{}, At: now.Add(200 * time.Millisecond)}))
	require.Equal(t, msgs.OK{}, env.exchange(msgs.Schedule{Function: msgs.EnableRGB{}, At: now}))

	require.Eventually(t, func() bool {
		return len(env.observer.firedFunctions()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []msgs.Function{msgs.EnableRGB{}, msgs.Increment{}}, env.observer.firedFunctions())
	require.Equal(t, msgs.OK{Payload: msgs.CounterValue{Value: 1}}, env.exchange(msgs.CounterQuery{}))
	require.True(t, env.dev.Snapshot().RGBEnabled)
}

func TestSchedulerUsesDeviceClock(t *testing.T) {
	conf := testConfig()
	dev := device.New(conf, &device.LogActuator{})
	offset := -time.Hour
	dev.Clock = func() time.Time { return time.Now().Add(offset) }

	ref := msgs.DateTime{Year: 2030, Month: 1, Day: 1}
	now := dev.Clock()
	require.Equal(t, msgs.OK{}, dev.State.Apply(msgs.SetDateTime{DateTime: &ref}, now))
	require.Equal(t, msgs.OK{}, dev.State.Apply(msgs.Schedule{Function: msgs.Increment{}, At: ref.Add(30 * time.Minute)}, now))
	require.Equal(t, msgs.OK{}, dev.State.Apply(msgs.Schedule{Function: msgs.EnableRGB{}, At: ref}, now))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dev.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.Eventually(t, func() bool { return dev.Snapshot().RGBEnabled }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	state := dev.Snapshot()
	require.Zero(t, state.Counter)
	require.Len(t, state.Schedule, 1)
	require.NotNil(t, state.ReferenceTime)
	require.True(t, state.ReferenceTime.Before(ref.Add(30*time.Minute)))
}

func TestEndToEndCorruptedFrames(t *testing.T) {
	env := newDeviceTestEnv(t, testConfig())

	require.NoError(t, env.client.SendRaw([]byte{wire.Terminator}))
	resp, err := env.client.WaitForResponse(time.Second)
	require.NoError(t, err)
	require.Equal(t, msgs.Rejected{Reason: msgs.CorruptedFrame}, resp)

	garbage := make([]byte, wire.MaxCommandFrameLen+1)
	for n := range garbage {
		garbage[n] = 0x33
	}
	require.NoError(t, env.client.SendRaw(garbage))
	resp, err = env.client.WaitForResponse(time.Second)
	require.NoError(t, err)
	require.Equal(t, msgs.Rejected{Reason: msgs.CorruptedFrame}, resp)

	require.Equal(t, msgs.OK{Payload: msgs.CounterValue{}}, env.exchange(msgs.CounterQuery{}))
	stats := env.dev.Stats.Snapshot()
	require.Equal(t, uint64(2), stats.FramesRejected)
	require.Equal(t, uint64(1), stats.CommandsReceived)
}

func TestEndToEndRecover(t *testing.T) {
	conf := testConfig()
	conf.Recover = true
	env := newDeviceTestEnv(t, conf)

	raw := []byte{1, 0, 0, 0, 0xfe}
	dst := make([]byte, wire.MaxEncodedLen(len(raw)))
	n, err := wire.StuffBytes(dst, raw)
	require.NoError(t, err)
	dst[n] = wire.Terminator
	require.NoError(t, env.client.SendRaw(dst[:n+1]))

	resp, err := env.client.WaitForResponse(time.Second)
	require.NoError(t, err)
	require.Equal(t, msgs.OKRecovered{Payload: msgs.CounterValue{}, Command: msgs.CounterQuery{}}, resp)
}

func TestSessionEndsOnLinkClose(t *testing.T) {
	dev := device.New(testConfig(), &device.LogActuator{})
	hostConn, devConn := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- dev.Serve(context.Background(), devConn) }()
	hostConn.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session did not end")
	}
}
