package extraction

import (
	"fmt"
	"strings"
	"testing"
)

func TestServiceComplete_Success(t *testing.T) {
	svc := &Service{}

	var persisted bool
	err := svc.complete("question", 7, `{"questions":[]}`, 0,
		func(id int64, payload string, total int) error {
			persisted = true
			if id != 7 || payload != `{"questions":[]}` || total != 0 {
				t.Errorf("unexpected persist args: %d %q %d", id, payload, total)
			}
			return nil
		},
		func(id int64, msg string) error {
			t.Errorf("markFailed called on success path: %d %q", id, msg)
			return nil
		})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if !persisted {
		t.Error("persist was not called")
	}
}

func TestServiceComplete_PersistFailureMarksSetFailed(t *testing.T) {
	svc := &Service{}

	var failedID int64
	var failedMsg string
	err := svc.complete("question", 7, `{"questions":[]}`, 0,
		func(id int64, payload string, total int) error {
			return fmt.Errorf("connection reset")
		},
		func(id int64, msg string) error {
			failedID = id
			failedMsg = msg
			return nil
		})
	if err == nil {
		t.Fatal("expected error when persistence fails")
	}

	if failedID != 7 {
		t.Errorf("set 7 was not marked failed, got id %d", failedID)
	}
	if !strings.Contains(failedMsg, "connection reset") {
		t.Errorf("failure message should carry the cause, got %q", failedMsg)
	}
}
