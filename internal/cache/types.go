package cache

// Flow names tag what a stored flow state belongs to, so a handler can
// reject state left behind by a different conversation.
const (
	FlowNewSubscription = "new_subscription"
	FlowRenewal         = "renewal"
	FlowManualPayment   = "manual_payment"
	FlowPromoEntry      = "promo_entry"
)

// Manual payment flow steps.
const (
	ManualStepInstructions   = "instructions"
	ManualStepWaitingReceipt = "waiting_receipt"
	ManualStepWaitingName    = "waiting_name"
)

// FlowState is the per-user conversation state kept between updates.
// One state per user; starting a new flow overwrites the old one.
type FlowState struct {
	Flow          string `json:"flow"`
	Step          string `json:"step,omitempty"`
	PlanID        uint   `json:"plan_id"`
	GroupID       int64  `json:"group_id,omitempty"`
	Title         string `json:"title,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	PromoID       *uint  `json:"promo_id,omitempty"`
	Mode          string `json:"mode,omitempty"`
	ReceiptFileID string `json:"receipt_file_id,omitempty"`
}
