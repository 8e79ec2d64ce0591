package ctxutil

import (
	"context"
	"testing"
)

func TestRequestDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	if CallerID(ctx) != "" {
		t.Fatalf("expected empty caller on bare context")
	}
	ctx = WithRequestData(ctx, &RequestData{UserID: "64b7f0c2a1e4d3b2c1a09f8e"})
	if got := CallerID(ctx); got != "64b7f0c2a1e4d3b2c1a09f8e" {
		t.Fatalf("CallerID: got=%q", got)
	}
}

func TestLogFields(t *testing.T) {
	if LogFields(context.Background()) != nil {
		t.Fatalf("expected nil fields without trace data")
	}
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	fields := LogFields(ctx)
	if len(fields) != 4 || fields[1] != "t1" || fields[3] != "r1" {
		t.Fatalf("LogFields: got=%v", fields)
	}
}
