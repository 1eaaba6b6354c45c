package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/model"
	"github.com/Tiliavir/worklog-report/internal/relay"
)

const userSearchPath = "/rest/api/3/user/search"

// User is a candidate returned by the user search endpoint.
type User struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// ResolveAccountID finds the account id of the user whose email matches
// email case-insensitively. When several candidates match, the first wins
// and a warning is logged.
func ResolveAccountID(ctx context.Context, f relay.Fetcher, cred model.Credential, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", apperr.Validationf("email to resolve is required")
	}
	path := userSearchPath + "?query=" + escapeComponent(email)

	body, err := f.Fetch(ctx, cred.Host, path, cred)
	if err != nil {
		return "", fmt.Errorf("searching users: %w", err)
	}
	if err := checkShape(userList, "user search", body); err != nil {
		return "", err
	}

	var users []User
	if err := json.Unmarshal(body, &users); err != nil {
		return "", &apperr.ProtocolError{Message: fmt.Sprintf("decoding user search response: %v", err), Body: clip(body)}
	}

	var matches []User
	for _, u := range users {
		if u.EmailAddress != "" && strings.EqualFold(u.EmailAddress, email) {
			matches = append(matches, u)
		}
	}
	if len(matches) == 0 {
		return "", &apperr.NotFoundError{Email: email}
	}

	log := zerolog.Ctx(ctx)
	if len(matches) > 1 {
		log.Warn().
			Str("email", email).
			Int("matches", len(matches)).
			Str("account_id", matches[0].AccountID).
			Msg("several users share this email; using the first")
	}
	log.Debug().Str("email", email).Str("account_id", matches[0].AccountID).Msg("resolved user")
	return matches[0].AccountID, nil
}
