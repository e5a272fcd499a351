package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapturer struct {
	data    [][]byte
	i       int
	failErr error
}

func (f *fakeCapturer) Next(ctx context.Context) ([]byte, error) {
	if f.i >= len(f.data) {
		if f.failErr != nil {
			return nil, f.failErr
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	d := f.data[f.i]
	f.i++
	return d, nil
}

func (f *fakeCapturer) Close() {}

type fakeDevice struct {
	name     string
	capturer Capturer
	openErr  error
}

func (d fakeDevice) Name() string { return d.name }

func (d fakeDevice) Open() (Capturer, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.capturer, nil
}

type fakeBackend struct {
	devices []Device
	listErr error
}

func (b fakeBackend) ListDevices() ([]Device, error) {
	return b.devices, b.listErr
}

func TestListenOnAllMergesDevices(t *testing.T) {
	backend := fakeBackend{
		devices: []Device{
			fakeDevice{name: "eth0", capturer: &fakeCapturer{data: [][]byte{{1}, {2}}}},
			fakeDevice{name: "eth1", capturer: &fakeCapturer{data: [][]byte{{3}}}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := ListenOnAll(ctx, backend)
	require.NoError(t, err)

	received := make([]Packet, 0, 3)
	for len(received) < 3 {
		select {
		case p := <-out:
			received = append(received, p)
		case <-ctx.Done():
			t.Fatal("timed out waiting for merged packets")
		}
	}

	assert.Len(t, received, 3)

	sourceIDs := make(map[uint64]bool)
	for _, p := range received {
		sourceIDs[p.SourceID] = true
	}
	assert.True(t, sourceIDs[SourceID("eth0")])
	assert.True(t, sourceIDs[SourceID("eth1")])
	assert.Len(t, sourceIDs, 2, "packets from both devices should carry distinct source ids")
}

func TestListenOnAllSkipsFailedDevice(t *testing.T) {
	backend := fakeBackend{
		devices: []Device{
			fakeDevice{name: "bad", openErr: errors.New("permission denied")},
			fakeDevice{name: "good", capturer: &fakeCapturer{data: [][]byte{{9}}}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := ListenOnAll(ctx, backend)
	require.NoError(t, err)

	select {
	case p := <-out:
		assert.Equal(t, SourceID("good"), p.SourceID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for packet from good device")
	}
}

func TestListenOnAllReturnsErrorWhenNoDeviceOpens(t *testing.T) {
	backend := fakeBackend{
		devices: []Device{
			fakeDevice{name: "bad1", openErr: errors.New("fail")},
			fakeDevice{name: "bad2", openErr: errors.New("fail")},
		},
	}

	_, err := ListenOnAll(context.Background(), backend)
	assert.Error(t, err)
}

func TestSourceIDStable(t *testing.T) {
	a := SourceID("eth0")
	b := SourceID("eth0")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, SourceID("eth1"))
}

func TestListenOnAllDropsWhenQueueFull(t *testing.T) {
	data := make([][]byte, queueCapacity*4)
	for i := range data {
		data[i] = []byte{byte(i)}
	}

	backend := fakeBackend{
		devices: []Device{
			fakeDevice{name: "firehose", capturer: &fakeCapturer{data: data}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	before := DroppedPackets()
	out, err := ListenOnAll(ctx, backend)
	require.NoError(t, err)

	// Drain slowly so the producer outruns the bounded channel.
	count := 0
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
			count++
			time.Sleep(time.Millisecond)
		case <-ctx.Done():
			assert.Greater(t, DroppedPackets(), before)
			return
		}
	}
}
