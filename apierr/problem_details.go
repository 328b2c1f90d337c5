package apierr

import "encoding/json"

// problemDetails is the ASP.NET validation problem shape the API returns on
// 400s: {"title": "...", "errors": {"Field": ["msg", ...]}}. Some endpoints
// return a bare {"message": "..."} instead; both are tolerated.
type problemDetails struct {
	Title   string              `json:"title"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func parseProblemDetails(body []byte) (string, map[string][]string) {
	if len(body) == 0 {
		return "", nil
	}
	var pd problemDetails
	if err := json.Unmarshal(body, &pd); err != nil {
		return "", nil
	}
	msg := pd.Title
	if msg == "" {
		msg = pd.Message
	}
	return msg, pd.Errors
}
