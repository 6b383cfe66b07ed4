package network

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
)

func TestOrder_EncodeDecode(t *testing.T) {
	in := Order{
		Tick:         42,
		PlayerID:     3,
		Entity:       17,
		Command:      command.Harvest,
		TargetType:   core.TargetRareResource,
		TargetEntity: 99,
		TargetX:      12.25,
		TargetY:      -4.5,
		Append:       true,
	}
	var buf bytes.Buffer
	if err := in.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	var out Order
	if err := out.Decode(&buf); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("decoded %+v, want %+v", out, in)
	}
	if err := out.Decode(&buf); err != io.EOF {
		t.Fatalf("empty input: err = %v, want io.EOF", err)
	}
}

func TestOrder_DecodeRejectsUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	o := Order{Command: command.CommandType(9)}
	if err := o.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if err := (&Order{}).Decode(&buf); err == nil {
		t.Fatal("expected error for unknown command type")
	}
}

func TestLockstep_DelaysAndOrders(t *testing.T) {
	ls := NewLockstep(2)
	a := ls.Submit(10, Order{PlayerID: 2, Entity: 1})
	ls.Submit(10, Order{PlayerID: 1, Entity: 2})
	ls.Submit(10, Order{PlayerID: 2, Entity: 3})
	if a.Tick != 12 {
		t.Fatalf("scheduled tick = %d, want 12", a.Tick)
	}
	if got := ls.Due(11); len(got) != 0 {
		t.Fatalf("orders due early: %+v", got)
	}
	got := ls.Due(12)
	want := []core.EntityID{2, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("due = %d orders, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Entity != want[i] {
			t.Fatalf("order %d entity %d, want %d", i, got[i].Entity, want[i])
		}
	}
	if ls.Pending() != 0 {
		t.Fatal("due orders should be removed")
	}
}

func TestLockstep_LateOrdersStillDelivered(t *testing.T) {
	ls := NewLockstep(0)
	ls.Deliver(Order{Tick: 3, Entity: 1})
	ls.Deliver(Order{Tick: 5, Entity: 2})
	got := ls.Due(7)
	if len(got) != 2 || got[0].Entity != 1 {
		t.Fatalf("due = %+v", got)
	}
}

func TestReplay_RecordAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.replay")
	rec, err := NewReplayRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := rec.Record(Order{Tick: uint64(i * 5), Entity: core.EntityID(i + 1), Command: command.Move}); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	rp, err := LoadReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rp.Orders) != 3 || rp.LastTick() != 10 {
		t.Fatalf("loaded %d orders, last tick %d", len(rp.Orders), rp.LastTick())
	}
	ls := NewLockstep(DefaultInputDelay)
	rp.Schedule(ls)
	if got := ls.Due(5); len(got) != 2 {
		t.Fatalf("due at 5 = %d, want 2", len(got))
	}
}

func TestReplay_RejectsForeignAndTruncatedFiles(t *testing.T) {
	dir := t.TempDir()
	foreign := filepath.Join(dir, "foreign")
	if err := os.WriteFile(foreign, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadReplay(foreign); err == nil {
		t.Fatal("expected error for foreign file")
	}

	var buf bytes.Buffer
	buf.Write(replayMagic[:])
	(&Order{Tick: 1}).Encode(&buf)
	truncated := filepath.Join(dir, "truncated")
	if err := os.WriteFile(truncated, buf.Bytes()[:buf.Len()-3], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadReplay(truncated); err == nil {
		t.Fatal("expected error for truncated order")
	}
}
