package validation

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kilianp07/rulecheck/core/model"
)

// ValidateClients checks required and unique ClientIDs, AttributesJSON
// syntax and that every requested task exists in taskIDs. Only the second
// and later occurrences of a ClientID are reported as duplicates.
func ValidateClients(clients []model.Client, taskIDs map[string]struct{}) []ValidationError {
	c := collector{entity: model.EntityClients}
	seen := make(map[string]struct{}, len(clients))
	for i, cl := range clients {
		id := strings.TrimSpace(cl.ClientID)
		switch _, dup := seen[id]; {
		case id == "":
			c.add(i, "ClientID", KindStructural, "Missing ClientID")
		case dup:
			c.add(i, "ClientID", KindStructural, "Duplicate ClientID")
		default:
			seen[id] = struct{}{}
		}

		if attrs := strings.TrimSpace(cl.AttributesJSON); attrs != "" && !gjson.Valid(attrs) {
			c.add(i, "AttributesJSON", KindFormat, "Invalid JSON")
		}

		for _, tok := range strings.Split(cl.RequestedTaskIDs, ",") {
			ref := strings.TrimSpace(tok)
			if ref == "" {
				continue
			}
			if _, ok := taskIDs[ref]; !ok {
				c.add(i, "RequestedTaskIDs", KindReferential, "Unknown TaskID: %s", ref)
			}
		}
	}
	return c.result()
}
