package domain

import "context"

// IntentRequest asks to buy a machine type through mobile money
type IntentRequest struct {
	UserID        string
	MachineTypeID string
	Phone         string
	ClientAmount  int64
	Medium        string
	Name          string
	Email         string
}

// IntentResult is the created purchase intent
type IntentResult struct {
	ExternalID        string            `json:"external_id"`
	ProviderSessionID string            `json:"provider_session_id,omitempty"`
	Amount            int64             `json:"amount"`
	Status            TransactionStatus `json:"status"`
}

// ConfirmResult is the outcome of applying a provider settlement
type ConfirmResult struct {
	ExternalID       string            `json:"external_id"`
	Granted          bool              `json:"granted"`
	AlreadyProcessed bool              `json:"already_processed"`
	Status           TransactionStatus `json:"status"`
}

// PaymentUseCase covers purchase intents and their confirmation
type PaymentUseCase interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
	// Confirm applies a settlement. A non-empty transID is kept as the provider reference.
	Confirm(ctx context.Context, externalID, transID string, outcome PaymentOutcome) (*ConfirmResult, error)
	// ReconcilePayment asks the provider for the settlement of one of the user's intents.
	ReconcilePayment(ctx context.Context, userID, externalID string) (*ConfirmResult, error)
}
