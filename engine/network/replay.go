package network

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// replayMagic starts every replay file
var replayMagic = [4]byte{'U', 'C', 'R', '1'}

// Replay records and plays back orders
type Replay struct {
	Orders []Order
	file   *os.File
	writer *bufio.Writer
}

// NewReplayRecorder creates a replay file for recording
func NewReplayRecorder(path string) (*Replay, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create replay: %w", err)
	}
	r := &Replay{file: f, writer: bufio.NewWriter(f)}
	if _, err := r.writer.Write(replayMagic[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("write replay header: %w", err)
	}
	return r, nil
}

// Record appends an order to the replay file
func (r *Replay) Record(o Order) error {
	r.Orders = append(r.Orders, o)
	return o.Encode(r.writer)
}

// Close flushes and closes the replay file
func (r *Replay) Close() error {
	if r.writer != nil {
		if err := r.writer.Flush(); err != nil {
			r.file.Close()
			return fmt.Errorf("flush replay: %w", err)
		}
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// LoadReplay reads every order of a replay file
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(reader, magic[:]); err != nil || magic != replayMagic {
		return nil, fmt.Errorf("%s: not a replay file", path)
	}
	replay := &Replay{}
	for {
		var o Order
		err := o.Decode(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: order %d: %w", path, len(replay.Orders), err)
		}
		replay.Orders = append(replay.Orders, o)
	}
	return replay, nil
}

// Schedule delivers every recorded order to the scheduler
func (r *Replay) Schedule(ls *Lockstep) {
	for _, o := range r.Orders {
		ls.Deliver(o)
	}
}

// LastTick returns the tick of the latest recorded order
func (r *Replay) LastTick() uint64 {
	var last uint64
	for _, o := range r.Orders {
		last = max(last, o.Tick)
	}
	return last
}
