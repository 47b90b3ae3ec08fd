// Package trigger starts the downstream workflow execution for a job.
// At most one execution is ever started per job identity: the trigger
// first claims the derived execution name with a create-if-absent write
// to a Firestore registry, and only a successful claim proceeds to start
// the workflow. A duplicate claim is rejected by the backend, which is
// the system's sole serialization point for double submission.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"docintake/internal/common"
	"docintake/internal/models"
)

type WorkflowTriggerConfig struct {
	ProjectID        string
	WorkflowLocation string
	WorkflowID       string
	// RegistryCollection holds one document per started execution,
	// keyed by the derived execution name.
	RegistryCollection string
}

// WorkflowTrigger starts Cloud Workflows executions.
type WorkflowTrigger struct {
	executions *executions.Client
	registry   *firestore.Client
	config     WorkflowTriggerConfig
}

func NewWorkflowTrigger(executionsClient *executions.Client, registryClient *firestore.Client, config WorkflowTriggerConfig) *WorkflowTrigger {
	return &WorkflowTrigger{
		executions: executionsClient,
		registry:   registryClient,
		config:     config,
	}
}

// ExecutionName derives the execution name for a job. Deterministic, so
// re-triggering the same job always claims the same registry slot.
func ExecutionName(documentID string) string {
	return fmt.Sprintf("execution-%s", documentID)
}

// Start triggers one workflow execution under the given derived name and
// returns the backend's execution handle. A name that was already claimed
// yields common.ErrDuplicateExecution and starts nothing.
func (t *WorkflowTrigger) Start(ctx context.Context, executionName string, input models.WorkflowInput) (string, error) {
	record := models.ExecutionRecord{
		DocumentID: input.DocumentID,
		CreatedAt:  time.Now().UTC(),
	}
	claim := t.registry.Collection(t.config.RegistryCollection).Doc(executionName)
	if _, err := claim.Create(ctx, record); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", fmt.Errorf("execution %s: %w", executionName, common.ErrDuplicateExecution)
		}
		return "", fmt.Errorf("failed to claim execution %s: %w", executionName, err)
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow input: %w", err)
	}

	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s",
			t.config.ProjectID, t.config.WorkflowLocation, t.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payload),
		},
	}
	exec, err := t.executions.CreateExecution(ctx, req)
	if err != nil {
		// The claim stays in place: the identity is burned rather than
		// risking a second execution. Callers re-submit under a fresh
		// identity.
		return "", fmt.Errorf("failed to create workflow execution %s: %w", executionName, err)
	}

	if _, err := claim.Update(ctx, []firestore.Update{
		{Path: "workflowExecutionName", Value: exec.GetName()},
	}); err != nil {
		slog.Warn("Failed to record workflow execution name on registry entry.",
			"executionName", executionName, "error", err)
	}
	return exec.GetName(), nil
}
