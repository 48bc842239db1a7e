package mediawiki

import (
	"context"
	"fmt"
)

// Login authenticates with action=login. Wikis running MediaWiki 1.27 or
// later expect a bot password (Special:BotPasswords) here.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.mw.Login(username, password)
	if err == nil {
		c.logger.Debug("logged in", "user", username, "api", c.apiURL)
		return nil
	}

	// A login result other than "Success" is reported as an API error whose
	// code is the result and whose info is the reason.
	if apiErr, ok := libraryAPIError(err); ok {
		reason := apiErr.Info
		if reason == "" {
			reason = apiErr.Code
		}
		return fmt.Errorf("%w: %s", ErrLoginFailed, reason)
	}
	return fmt.Errorf("failed to log in as %s: %w", username, err)
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mw.Logout()
	return nil
}
