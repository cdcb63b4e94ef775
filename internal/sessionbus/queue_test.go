package sessionbus

import "testing"

func TestOutboundQueuePushPopOrder(t *testing.T) {
	q := newOutboundQueue(4)
	for _, m := range [][]byte{[]byte("a"), []byte("b"), []byte("c")} {
		if !q.push(m) {
			t.Fatalf("push(%s) rejected, want accepted", m)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.pop()
		if !ok || string(got) != want {
			t.Fatalf("pop() = %q, %v; want %q, true", got, ok, want)
		}
	}
}

func TestOutboundQueueRejectsPastCapacity(t *testing.T) {
	q := newOutboundQueue(2)
	if !q.push([]byte("a")) || !q.push([]byte("b")) {
		t.Fatal("expected first two pushes to be accepted")
	}
	if q.push([]byte("c")) {
		t.Fatal("push past capacity should be rejected")
	}
}

func TestOutboundQueuePushAfterCloseRejected(t *testing.T) {
	q := newOutboundQueue(4)
	q.close()
	if q.push([]byte("a")) {
		t.Fatal("push after close should be rejected")
	}
	if _, ok := q.pop(); ok {
		t.Fatal("pop after close should report not ok")
	}
}
