package telegram

import (
	"encoding/json"
	"errors"
	"net/url"
)

type WebAppUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// ParseUser extracts the Telegram user object from already validated
// init data values.
func ParseUser(values url.Values) (*WebAppUser, error) {
	raw := values.Get("user")
	if raw == "" {
		return nil, errors.New("user field missing")
	}

	var user WebAppUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}

	return &user, nil
}
