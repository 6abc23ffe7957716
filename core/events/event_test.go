package events

import (
	"testing"

	"assembly/core/types"
)

func TestBufferFlushPreservesOrder(t *testing.T) {
	var buf Buffer
	buf.Emit(Wrap(types.NewEvent("a")))
	buf.Emit(Wrap(types.NewEvent("b")))

	log := NewLog(10)
	buf.Flush(log)
	got := log.Recent(0)
	if len(got) != 2 || got[0].Type != "a" || got[1].Type != "b" {
		t.Fatalf("unexpected events %+v", got)
	}
	if len(buf.Events()) != 0 {
		t.Fatalf("buffer not cleared")
	}

	buf.Emit(Wrap(types.NewEvent("c")))
	buf.Reset()
	buf.Flush(log)
	if len(log.Recent(0)) != 2 {
		t.Fatalf("reset events were published")
	}
}

func TestLogCapacityAndFanout(t *testing.T) {
	small := NewLog(2)
	large := NewLog(5)
	fan := Fanout{small, nil, large}
	for _, name := range []string{"one", "two", "three"} {
		fan.Emit(Wrap(types.NewEvent(name)))
	}
	if got := small.Recent(0); len(got) != 2 || got[0].Type != "two" {
		t.Fatalf("unexpected small log %+v", got)
	}
	if got := large.Recent(1); len(got) != 1 || got[0].Type != "three" {
		t.Fatalf("unexpected recent %+v", got)
	}
}
