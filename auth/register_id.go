package auth

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/novademy/novademy-go/client"
)

// The register endpoint's response shape has varied across API deployments:
// sometimes {"id": "..."} in the body, sometimes only a Location header,
// sometimes an id embedded in a free-text message, and sometimes a bare
// numeric id that needs padding into a GUID. registerResult tries each
// known variant in that fixed order.

var (
	numberPattern = regexp.MustCompile(`[0-9]+`)
	uuidPattern   = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

type registerBody struct {
	ID      json.RawMessage `json:"id"`
	Message string          `json:"message"`
}

func registerResult(resp *client.Response) (*RegisterResult, error) {
	var body registerBody
	// tolerate non-JSON bodies; later fallbacks may still apply
	_ = json.Unmarshal(resp.Body, &body)

	message := body.Message
	if message == "" {
		message = "Registration successful"
	}

	if id, ok := idFromBodyField(body.ID); ok {
		return &RegisterResult{ID: id, Message: message}, nil
	}
	if id, ok := idFromLocation(resp.Header.Get("Location")); ok {
		return &RegisterResult{ID: id, Message: message}, nil
	}
	if id, ok := idFromText(body.Message); ok {
		return &RegisterResult{ID: id, Message: message}, nil
	}
	if id, ok := idFromText(strings.TrimSpace(string(resp.Body))); ok {
		return &RegisterResult{ID: id, Message: message}, nil
	}
	return nil, ErrNoRegisteredID
}

func idFromBodyField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return normalizeID(asString)
	}
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return padNumericID(asNumber), true
	}
	return "", false
}

func idFromLocation(location string) (string, bool) {
	if location == "" {
		return "", false
	}
	segments := strings.Split(strings.TrimRight(location, "/"), "/")
	return normalizeID(segments[len(segments)-1])
}

func idFromText(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if match := uuidPattern.FindString(text); match != "" {
		return strings.ToLower(match), true
	}
	if match := numberPattern.FindString(text); match != "" {
		var n int64
		if _, err := fmt.Sscanf(match, "%d", &n); err == nil {
			return padNumericID(n), true
		}
	}
	return "", false
}

// normalizeID accepts a GUID as-is and pads a bare numeric id.
func normalizeID(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if parsed, err := uuid.Parse(candidate); err == nil {
		return parsed.String(), true
	}
	if numberPattern.MatchString(candidate) && numberPattern.FindString(candidate) == candidate {
		var n int64
		if _, err := fmt.Sscanf(candidate, "%d", &n); err == nil {
			return padNumericID(n), true
		}
	}
	return "", false
}

// padNumericID embeds a numeric user id into the final group of a nil GUID,
// matching how older API revisions keyed users.
func padNumericID(n int64) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
}
