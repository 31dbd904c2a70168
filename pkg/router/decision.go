package router

// Route names the handler a query is dispatched to.
type Route string

const (
	RouteWeather Route = "weather"
	RoutePDF     Route = "pdf"
)

// ReasonRuleMatch tags decisions made by the keyword rule stage.
const ReasonRuleMatch = "rule_match(weather_keywords)"

// classifierReason tags decisions made by the fallback classifier.
func classifierReason(model string) string {
	return "llm_router(model=" + model + ")"
}

// Decision captures routing decision details.
type Decision struct {
	Route             Route  `json:"route"`
	Reason            string `json:"reason"`
	Keyword           string `json:"keyword,omitempty"`
	UsedLLM           bool   `json:"used_llm"`
	ClassifierAdapter string `json:"classifier_adapter,omitempty"`
	ClassifierModel   string `json:"classifier_model,omitempty"`
	ClassifierOutput  string `json:"classifier_output,omitempty"`
}
