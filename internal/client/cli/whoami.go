package cli

import (
	"context"
	"fmt"
)

// Whoami fetches the authenticated profile through the network gateway.
// An expired access token is renewed transparently on the way.
func (a *App) Whoami(ctx context.Context) error {
	user, err := a.viewerService.Current(ctx)
	if err != nil {
		printAuthError("Profile lookup", err)
		return err
	}

	fmt.Printf("%s <%s> (id %s, registered %s)\n",
		user.Name, user.Email, user.ID, user.CreatedAt.Format("2006-01-02"))
	return nil
}
