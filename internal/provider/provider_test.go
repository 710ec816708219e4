package provider

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestWaitForResult_ImmediateSuccess(t *testing.T) {
	client := NewMockClient(`{"questions": []}`)

	jobID, err := client.Submit(context.Background(), "page text", "instructions")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := WaitForResult(context.Background(), client, jobID, time.Millisecond, 5)
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if result != `{"questions": []}` {
		t.Errorf("unexpected result %q", result)
	}
}

func TestWaitForResult_PendingThenSuccess(t *testing.T) {
	client := NewMockClient("done")
	client.PendingPolls = 3

	jobID, err := client.Submit(context.Background(), "page text", "instructions")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := WaitForResult(context.Background(), client, jobID, time.Millisecond, 10)
	if err != nil {
		t.Fatalf("expected success after pending polls, got: %v", err)
	}
	if result != "done" {
		t.Errorf("unexpected result %q", result)
	}
}

func TestWaitForResult_Exhaustion(t *testing.T) {
	client := NewMockClient("never delivered")
	client.PendingPolls = 100

	jobID, err := client.Submit(context.Background(), "page text", "instructions")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = WaitForResult(context.Background(), client, jobID, time.Millisecond, 3)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout in message, got: %v", err)
	}
}

func TestWaitForResult_UnknownJob(t *testing.T) {
	client := NewMockClient("x")

	_, err := WaitForResult(context.Background(), client, "no-such-job", time.Millisecond, 3)
	if err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestMockClient_EmptyContentRejected(t *testing.T) {
	client := NewMockClient("x")
	if _, err := client.Submit(context.Background(), "", "instructions"); err == nil {
		t.Fatal("expected error for empty content")
	}
}
