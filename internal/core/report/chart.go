package report

import "github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"

// PieChartData is a ready-to-draw breakdown
type PieChartData struct {
	Type   string    `json:"type"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors,omitempty"`
}

// ClassificationChart breaks a report's conversations down by AI classification
func ClassificationChart(r models.Report) PieChartData {
	return PieChartData{
		Type:   "donut",
		Labels: []string{"Closed Sales", "Interested Customers", "Requires Follow-up", "Information Requested"},
		Values: []float64{
			float64(r.Classified.ClosedSale),
			float64(r.Classified.InterestedCustomer),
			float64(r.Classified.RequiresFollowup),
			float64(r.Classified.InformationRequested),
		},
		Colors: []string{"#10B981", "#3B82F6", "#F59E0B", "#6B7280"},
	}
}
