package cli

import (
	"context"
)

func (c *Cli) runGreet(ctx context.Context) error {
	session, err := c.currentSession(ctx)
	if err != nil {
		return err
	}

	message, err := c.apiClient.Greet(ctx, session.AccessToken)
	if err != nil {
		return err
	}

	c.io.Println(message)
	return nil
}
