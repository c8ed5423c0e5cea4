package cli

import (
	"context"
	"log"
	"os"
)

func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.authService.Register(ctx, username, string(password)); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}
	log.Printf("Registered, you can now log in")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.authService.Login(ctx, username, string(password)); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}
	log.Printf("Login successful")
	return nil
}

// DeleteAccount removes the account and all cloud data after an explicit
// confirmation, then logs out locally.
func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := Confirm(a.reader, "This will permanently delete your account and ALL cloud entries.", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if !ok {
		printlnFn("Cancelled")
		return nil
	}
	if err := a.authService.DeleteAccount(ctx); err != nil {
		log.Printf("account deletion failed: %s", err.Error())
		return err
	}
	log.Printf("Account deleted")
	return nil
}

// Logout tears down the per-user sync state before the identity changes:
// the watcher must never carry one user's cursor into another's session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Logged out")
	return nil
}
