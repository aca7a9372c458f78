package logging

import "strings"

// FormatSubject builds the client/stage subject string used in console output.
func FormatSubject(clientID, stage string) string {
	clientID = strings.TrimSpace(clientID)
	stage = strings.TrimSpace(stage)
	switch {
	case clientID != "" && stage != "":
		return "Client " + clientID + " (" + stage + ")"
	case clientID != "":
		return "Client " + clientID
	default:
		return stage
	}
}
