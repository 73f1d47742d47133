package pipeline

import (
	"context"
	"testing"
	"time"

	domain "docforge/internal/domain/pipeline"
	queueinfra "docforge/internal/infrastructure/queue"
	sqliterepo "docforge/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "docforge/internal/infrastructure/persistence/sqlite/uow"
)

func TestQueuedDispatchProcessedByWorker(t *testing.T) {
	_, generator, cache, db := setupServiceWithDB(t, domain.DispatchManual)

	memQueue := queueinfra.NewMemoryQueue(4)
	t.Cleanup(memQueue.Close)

	repo := sqliterepo.NewPipelineRepository(db)
	uow := sqliteuow.NewUnitOfWork(db)
	svc := NewService(repo, uow, cache, memQueue, generator, domain.DispatchPolicy{Mode: domain.DispatchQueued})

	ctx := context.Background()
	unsubscribe, err := svc.StartWorker(ctx)
	if err != nil {
		t.Fatalf("StartWorker() error = %v", err)
	}
	t.Cleanup(func() { _ = unsubscribe() })

	result, err := svc.CreateJob(ctx, CreateJobInput{Intent: "CREATE"})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if result.Dispatched != "queued" {
		t.Fatalf("dispatched = %q", result.Dispatched)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		detail, err := svc.GetJob(ctx, result.JobRef)
		if err != nil {
			t.Fatalf("GetJob() error = %v", err)
		}
		if detail.Status == "COMPLETED" {
			if detail.ResultDraft != cleanDraft {
				t.Fatalf("result draft = %q", detail.ResultDraft)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job not completed in time, status = %q", detail.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if generator.callCount() != 1 {
		t.Fatalf("generator calls = %d", generator.callCount())
	}
}

func TestQueuedDispatchWithoutQueueFails(t *testing.T) {
	svc, _, _ := setupService(t, domain.DispatchQueued)

	result, err := svc.CreateJob(context.Background(), CreateJobInput{Intent: "CREATE"})
	if err == nil {
		t.Fatalf("CreateJob() expected error without a queue")
	}
	// The job itself is created and stays PENDING for a later retry.
	if result.JobRef == "" || result.Status != "PENDING" {
		t.Fatalf("CreateJob() result = %+v", result)
	}
}
