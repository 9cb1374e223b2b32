package service

import "github.com/finsight/fraudlens/internal/models"

// ReasonInfo describes a review-trigger reason code.
type ReasonInfo struct {
	Description string
	Weight      int
}

var reasonCatalog = map[models.ReasonCode]ReasonInfo{
	models.ReasonVeryHighRiskScore:    {Description: "Very high risk score (90+)"},
	models.ReasonHighRiskScore:        {Description: "High risk score (70-89)"},
	models.ReasonVeryLargeTransaction: {Description: "Very large transaction amount (>$10,000)"},
	models.ReasonLargeTransaction:     {Description: "Large transaction amount (>$5,000)"},
	models.ReasonVeryLowConfidence:    {Description: "Very low confidence in analysis"},
	models.ReasonLowConfidence:        {Description: "Low confidence in analysis"},
	models.ReasonSuspiciousPattern:    {Description: "Suspicious transaction pattern detected"},
	models.ReasonUnusualPattern:       {Description: "Unusual transaction pattern"},
	models.ReasonManualReview:         {Description: "Manual review required"},
	models.ReasonAIFailure:            {Description: "Automated analysis failed", Weight: 2},
	models.ReasonEmergency:            {Description: "Emergency escalation"},
}

// ReasonDescription returns the human-readable description for a reason code.
func ReasonDescription(reason models.ReasonCode) string {
	if info, ok := reasonCatalog[reason]; ok {
		return info.Description
	}
	return "Review required"
}

// ReasonWeight returns the priority weight carried by a reason code.
func ReasonWeight(reason models.ReasonCode) int {
	return reasonCatalog[reason].Weight
}
