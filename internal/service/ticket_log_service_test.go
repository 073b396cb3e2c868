package service

import (
	"context"
	"errors"
	"testing"

	"support-desk/internal/domain"
)

func newTicketLogFixture() (*TicketLogService, *mockTicketLogRepo) {
	requests := newMockServiceRequestRepo()
	requests.requests[1] = domain.ServiceRequest{ID: 1, UserID: "u1"}
	logs := &mockTicketLogRepo{}
	return NewTicketLogService(requests, logs), logs
}

func TestTicketLogService_Notes(t *testing.T) {
	svc, _ := newTicketLogFixture()
	ctx := context.Background()

	if _, err := svc.AddNote(ctx, "u1", 1, "first"); err != nil {
		t.Fatalf("add note: %v", err)
	}
	if _, err := svc.AddNote(ctx, "a1", 1, "second"); err != nil {
		t.Fatalf("add note: %v", err)
	}

	notes, err := svc.ListNotes(ctx, 1)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 2 || notes[0].Message != "first" || notes[1].UserID != "a1" {
		t.Fatalf("unexpected notes: %+v", notes)
	}

	empty, err := svc.ListNotes(ctx, 2)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil notes, got %#v err=%v", empty, err)
	}
}

func TestTicketLogService_NoteValidation(t *testing.T) {
	svc, logs := newTicketLogFixture()
	ctx := context.Background()

	if _, err := svc.AddNote(ctx, "u1", 1, "   "); !errors.Is(err, ErrMessageRequired) {
		t.Fatalf("expected ErrMessageRequired, got %v", err)
	}
	if _, err := svc.AddNote(ctx, "u1", 9, "hello"); !errors.Is(err, ErrServiceRequestNotFound) {
		t.Fatalf("expected ErrServiceRequestNotFound, got %v", err)
	}
	if len(logs.notes) != 0 {
		t.Fatalf("expected no notes stored")
	}
}

func TestTicketLogService_SpentTime(t *testing.T) {
	svc, _ := newTicketLogFixture()
	ctx := context.Background()

	for _, m := range []int{30, 45} {
		if _, err := svc.AddSpentTime(ctx, "a1", 1, m); err != nil {
			t.Fatalf("add spent time: %v", err)
		}
	}

	summary, err := svc.SpentTime(ctx, 1)
	if err != nil {
		t.Fatalf("spent time: %v", err)
	}
	if len(summary.Entries) != 2 || summary.TotalMinutes != 75 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, err := svc.AddSpentTime(ctx, "a1", 1, 0); !errors.Is(err, ErrInvalidMinutes) {
		t.Fatalf("expected ErrInvalidMinutes, got %v", err)
	}
	if _, err := svc.AddSpentTime(ctx, "a1", 9, 10); !errors.Is(err, ErrServiceRequestNotFound) {
		t.Fatalf("expected ErrServiceRequestNotFound, got %v", err)
	}

	empty, err := svc.SpentTime(ctx, 2)
	if err != nil || empty.Entries == nil || empty.TotalMinutes != 0 {
		t.Fatalf("expected empty summary, got %+v err=%v", empty, err)
	}
}
