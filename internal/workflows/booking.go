package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// BookingTaskQueue is the Temporal task queue booking workers listen on.
const BookingTaskQueue = "booking-queue"

// BookingInput is the input for the booking workflow.
type BookingInput struct {
	UserRef            string
	HospitalID         string
	Name               string
	Lat                float64
	Lon                float64
	Address            string
	Phone              string
	EmergencyAvailable bool
	Note               string
}

// BookingResult is returned to the workflow starter.
type BookingResult struct {
	BookingID  string
	Reference  string
	HospitalID string
}

// BookingWorkflow resolves the hospital (creating it when it is not
// persisted yet), inserts the booking, and publishes the created event.
// Hospital resolution and the booking write are load-bearing; a failed
// publish is logged and the booking stands.
func BookingWorkflow(ctx workflow.Context, input BookingInput) (BookingResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting booking workflow", "user", input.UserRef)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Resolve the hospital to a durable ID
	var hospitalID string
	err := workflow.ExecuteActivity(ctx, "ResolveHospital", input).Get(ctx, &hospitalID)
	if err != nil {
		return BookingResult{}, err
	}

	// Step 2: Insert the booking
	var result BookingResult
	err = workflow.ExecuteActivity(ctx, "CreateBooking", input, hospitalID).Get(ctx, &result)
	if err != nil {
		return BookingResult{}, err
	}

	// Step 3: Publish the created event (best effort)
	if err := workflow.ExecuteActivity(ctx, "PublishBookingCreated", result.BookingID).Get(ctx, nil); err != nil {
		logger.Warn("booking event publish failed", "error", err, "booking", result.BookingID)
	}

	logger.Info("Booking created", "reference", result.Reference)
	return result, nil
}
