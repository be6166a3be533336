package models

// ClassifiedConversations breaks down conversations by AI classification
type ClassifiedConversations struct {
	ClosedSale           int `json:"closed_sale"`
	InterestedCustomer   int `json:"interested_customer"`
	RequiresFollowup     int `json:"requires_followup"`
	InformationRequested int `json:"information_requested"`
}

// Report aggregates conversation metrics over a date range
type Report struct {
	ID                   string                  `json:"id"`
	StartDate            string                  `json:"start_date"`
	EndDate              string                  `json:"end_date"`
	TotalConversations   int                     `json:"total_conversations"`
	Classified           ClassifiedConversations `json:"classified_conversations"`
	AverageResponseTime  float64                 `json:"average_response_time"`
	CustomerSatisfaction float64                 `json:"customer_satisfaction"`
}

// Stats is the free-form counter payload of the backend stats endpoint
type Stats map[string]interface{}

// Health is the backend liveness status
type Health struct {
	Status string `json:"status"`
}
