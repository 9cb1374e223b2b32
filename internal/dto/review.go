package dto

// DecisionRequest is the payload submitted by a reviewer.
type DecisionRequest struct {
	Status     string `json:"status" validate:"required"`
	ReviewerID string `json:"reviewerId" validate:"required"`
	Comments   string `json:"comments"`
}

// ReviewListQuery captures the supported list filters.
type ReviewListQuery struct {
	Status string `form:"status"`
}
